package sentiment

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func trainedTestModel(t *testing.T) *Model {
	t.Helper()

	docs, labels := reviewTokens(20)
	vec, err := NewVectorizer(VectorizerTFIDF, 100, 1)
	if err != nil {
		t.Fatalf("NewVectorizer failed: %v", err)
	}
	pipeline, result, err := NewTrainer(DefaultTrainingConfig()).Train(docs, labels, vec)
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	classes := make([]string, 0, len(pipeline.Classes()))
	for _, c := range pipeline.Classes() {
		classes = append(classes, c.String())
	}
	return &Model{
		Name:     ModelFileName("test", VectorizerTFIDF, 100),
		Pipeline: pipeline,
		Meta: ModelMeta{
			Dataset:     "test",
			Vectorizer:  VectorizerTFIDF,
			MaxFeatures: 100,
			MinDF:       1,
			Classes:     classes,
			Accuracy:    result.MeanAccuracy,
			Seed:        42,
			TrainedAt:   time.Now().UTC(),
		},
	}
}

func TestModelRoundTrip(t *testing.T) {
	model := trainedTestModel(t)
	path := filepath.Join(t.TempDir(), model.Name)

	if err := model.Write(path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	for _, name := range []string{"meta.json", "classifier.gob", "vectorizer.gob"} {
		if _, err := os.Stat(filepath.Join(path, name)); err != nil {
			t.Errorf("model directory is missing %s: %v", name, err)
		}
	}

	loaded, err := ModelFromDisk(path)
	if err != nil {
		t.Fatalf("ModelFromDisk failed: %v", err)
	}

	if loaded.Meta.Dataset != model.Meta.Dataset ||
		loaded.Meta.Vectorizer != model.Meta.Vectorizer ||
		loaded.Meta.Accuracy != model.Meta.Accuracy {
		t.Errorf("loaded meta %+v does not match saved %+v", loaded.Meta, model.Meta)
	}
	if loaded.Meta.Version != "1" {
		t.Errorf("loaded version = %q", loaded.Meta.Version)
	}

	// The reloaded pipeline must classify exactly like the original.
	samples := [][]string{
		{"really", "good", "fun"},
		{"really", "bad", "boring"},
		{"unseen", "words", "only"},
	}
	for _, tokens := range samples {
		wantLabel, wantProbs := model.Pipeline.Predict(tokens)
		gotLabel, gotProbs := loaded.Pipeline.Predict(tokens)
		if gotLabel != wantLabel {
			t.Errorf("Predict(%v) = %v after reload, want %v", tokens, gotLabel, wantLabel)
		}
		if !reflect.DeepEqual(gotProbs, wantProbs) {
			t.Errorf("Predict(%v) probabilities changed across reload", tokens)
		}
	}
}

func TestModelFromDiskErrors(t *testing.T) {
	if _, err := ModelFromDisk(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected an error for a missing model directory")
	}

	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}
	if _, err := ModelFromDisk(file); err == nil {
		t.Error("expected an error when the model path is a file")
	}

	// A directory without model files is not a model.
	if _, err := ModelFromDisk(t.TempDir()); err == nil {
		t.Error("expected an error for an empty model directory")
	}
}

func TestModelWriteIncomplete(t *testing.T) {
	m := &Model{Name: "broken", Pipeline: &Pipeline{}}
	if err := m.Write(t.TempDir()); err == nil {
		t.Error("expected an error writing a pipeline without classifier and vectorizer")
	}
}

func TestModelFileName(t *testing.T) {
	got := ModelFileName("sentiment140", VectorizerTFIDF, 20000)
	if got != "sentiment140_tfidf_ft20000" {
		t.Errorf("ModelFileName = %q", got)
	}
}
