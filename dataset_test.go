package sentiment

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDatasetRegistry(t *testing.T) {
	expected := []string{"amazonreviews", "imdb50k", "sentiment140", "test"}
	if got := Datasets(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Datasets() = %v, want %v", got, expected)
	}

	trainable := TrainableDatasets()
	for _, name := range trainable {
		if name == "test" {
			t.Error("the test dataset must not be trainable")
		}
	}
	if len(trainable) != 3 {
		t.Errorf("TrainableDatasets() = %v", trainable)
	}

	if _, err := DatasetByName("nonsense"); err == nil {
		t.Error("expected an error for an unknown dataset")
	} else if !strings.Contains(err.Error(), "available:") {
		t.Errorf("unknown dataset error should list the options, got %q", err)
	}
}

func TestLoadSentiment140(t *testing.T) {
	data := `"0","1","Mon Apr 06 22:19:45 PDT 2009","NO_QUERY","someone","this is awful"
"4","2","Mon Apr 06 22:19:49 PDT 2009","NO_QUERY","other","this is great"
"2","3","Mon Apr 06 22:20:00 PDT 2009","NO_QUERY","third","this is whatever"
`
	reviews, err := loadSentiment140(strings.NewReader(data))
	if err != nil {
		t.Fatalf("loadSentiment140 failed: %v", err)
	}
	expected := []Review{
		{Text: "this is awful", Label: LabelNegative},
		{Text: "this is great", Label: LabelPositive},
		{Text: "this is whatever", Label: LabelNeutral},
	}
	if !reflect.DeepEqual(reviews, expected) {
		t.Errorf("got %v, want %v", reviews, expected)
	}

	bad := `"7","1","date","NO_QUERY","user","text"` + "\n"
	if _, err := loadSentiment140(strings.NewReader(bad)); err == nil {
		t.Error("expected an error for an unknown polarity")
	}
}

func TestLoadAmazonReviews(t *testing.T) {
	data := `__label__2 Great product, works as advertised.
__label__1 Broke after two days.

__label__2 Would buy again.
`
	reviews, err := loadAmazonReviews(strings.NewReader(data))
	if err != nil {
		t.Fatalf("loadAmazonReviews failed: %v", err)
	}
	if len(reviews) != 3 {
		t.Fatalf("got %d reviews, want 3", len(reviews))
	}
	if reviews[0].Label != LabelPositive || reviews[1].Label != LabelNegative {
		t.Errorf("labels parsed as %v, %v", reviews[0].Label, reviews[1].Label)
	}
	if reviews[1].Text != "Broke after two days." {
		t.Errorf("text parsed as %q", reviews[1].Text)
	}

	if _, err := loadAmazonReviews(strings.NewReader("__label__9 odd\n")); err == nil {
		t.Error("expected an error for an unknown label marker")
	}
}

func TestLoadIMDB50K(t *testing.T) {
	data := `review,sentiment
"A masterpiece.<br />Truly moving.",positive
"Dull and overlong.",negative
`
	reviews, err := loadIMDB50K(strings.NewReader(data))
	if err != nil {
		t.Fatalf("loadIMDB50K failed: %v", err)
	}
	expected := []Review{
		{Text: "A masterpiece.<br />Truly moving.", Label: LabelPositive},
		{Text: "Dull and overlong.", Label: LabelNegative},
	}
	if !reflect.DeepEqual(reviews, expected) {
		t.Errorf("got %v, want %v", reviews, expected)
	}
}

func TestLoadTestDataset(t *testing.T) {
	data := `text,label
loved it,1
hated it,0
it exists,2
`
	reviews, err := loadTestDataset(strings.NewReader(data))
	if err != nil {
		t.Fatalf("loadTestDataset failed: %v", err)
	}
	expected := []Review{
		{Text: "loved it", Label: LabelPositive},
		{Text: "hated it", Label: LabelNegative},
		{Text: "it exists", Label: LabelNeutral},
	}
	if !reflect.DeepEqual(reviews, expected) {
		t.Errorf("got %v, want %v", reviews, expected)
	}
}

func TestLoadDatasetFromDisk(t *testing.T) {
	dir := t.TempDir()
	data := `review,sentiment
"Loved every minute.",positive
"Walked out halfway.",negative
`
	if err := os.WriteFile(filepath.Join(dir, "imdb50k.csv"), []byte(data), 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}

	reviews, err := LoadDataset(context.Background(), "imdb50k", dir)
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if len(reviews) != 2 {
		t.Errorf("got %d reviews, want 2", len(reviews))
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	// sentiment140 sits behind a Kaggle landing page, so a missing file
	// must point the user at the download URL instead of fetching.
	_, err := LoadDataset(context.Background(), "sentiment140", t.TempDir())
	if err == nil {
		t.Fatal("expected an error for a missing dataset file")
	}
	if !strings.Contains(err.Error(), datasetRegistry["sentiment140"].URL) {
		t.Errorf("error should name the download URL, got %q", err)
	}
}

func TestLoadDatasetEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "imdb50k.csv"), []byte("review,sentiment\n"), 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}
	if _, err := LoadDataset(context.Background(), "imdb50k", dir); err == nil {
		t.Error("expected an error for a header-only dataset")
	}
}
