package sentiment

import (
	"encoding/gob"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// Model directory layout. A model is a directory so the pieces can be
// inspected and versioned independently.
const (
	metaFile       = "meta.json"
	classifierFile = "classifier.gob"
	vectorizerFile = "vectorizer.gob"

	modelVersion = "1"
)

// ModelMeta records how a model was produced.
type ModelMeta struct {
	Dataset     string         `json:"dataset"`
	Vectorizer  VectorizerKind `json:"vectorizer"`
	MaxFeatures int            `json:"max_features"`
	MinDF       int            `json:"min_df"`
	Classes     []string       `json:"classes"`
	Accuracy    float64        `json:"accuracy"`
	Seed        int64          `json:"seed"`
	TrainedAt   time.Time      `json:"trained_at"`
	Version     string         `json:"version"`
}

// A Model holds a trained pipeline together with its metadata.
type Model struct {
	Name     string
	Pipeline *Pipeline
	Meta     ModelMeta
}

// vectorizerEnvelope lets gob carry the Vectorizer interface; the
// concrete types are registered in vectorize.go.
type vectorizerEnvelope struct {
	V Vectorizer
}

// ModelFileName is the conventional directory name for a trained model.
func ModelFileName(dataset string, kind VectorizerKind, maxFeatures int) string {
	return fmt.Sprintf("%s_%s_ft%d", dataset, kind, maxFeatures)
}

// Write saves the model to the given directory, creating it if needed.
func (m *Model) Write(path string) error {
	if m.Pipeline == nil || m.Pipeline.Classifier == nil || m.Pipeline.Vectorizer == nil {
		return fmt.Errorf("write model: pipeline is incomplete")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	meta := m.Meta
	meta.Version = modelVersion
	metaData, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(path, metaFile), metaData, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", metaFile, err)
	}

	if err := writeGob(filepath.Join(path, classifierFile), m.Pipeline.Classifier); err != nil {
		return err
	}
	return writeGob(filepath.Join(path, vectorizerFile), &vectorizerEnvelope{V: m.Pipeline.Vectorizer})
}

func writeGob(path string, value any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := gob.NewEncoder(f).Encode(value); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// ModelFromDisk loads a model from the user-provided directory.
func ModelFromDisk(path string) (*Model, error) {
	if info, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("model %s: not a directory", path)
	}
	return ModelFromFS(filepath.Base(path), os.DirFS(path))
}

// ModelFromFS loads a model from any fs.FS, e.g. an embedded one.
func ModelFromFS(name string, filesys fs.FS) (*Model, error) {
	metaData, err := fs.ReadFile(filesys, metaFile)
	if err != nil {
		return nil, fmt.Errorf("model %s: read %s: %w", name, metaFile, err)
	}
	var meta ModelMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return nil, fmt.Errorf("model %s: parse %s: %w", name, metaFile, err)
	}
	if meta.Version != modelVersion {
		return nil, fmt.Errorf("model %s: unsupported version %q", name, meta.Version)
	}

	var classifier LogisticRegression
	if err := readGob(filesys, classifierFile, &classifier); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}

	var envelope vectorizerEnvelope
	if err := readGob(filesys, vectorizerFile, &envelope); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	if envelope.V == nil {
		return nil, fmt.Errorf("model %s: empty vectorizer", name)
	}

	return &Model{
		Name: name,
		Pipeline: &Pipeline{
			Vectorizer: envelope.V,
			Classifier: &classifier,
		},
		Meta: meta,
	}, nil
}

func readGob(filesys fs.FS, name string, value any) error {
	f, err := filesys.Open(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(value); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
