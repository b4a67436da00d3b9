package sentiment

import (
	"bufio"
	"compress/bzip2"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// A DatasetInfo describes one of the known review datasets.
type DatasetInfo struct {
	Name     string
	File     string // file name inside the data directory
	URL      string // where to obtain the file
	EvalOnly bool   // usable with evaluate but not train
	direct   bool   // the URL is directly fetchable (not a landing page)

	load func(io.Reader) ([]Review, error)
}

var datasetRegistry = map[string]DatasetInfo{
	"sentiment140": {
		Name: "sentiment140",
		File: "sentiment140.csv",
		URL:  "https://www.kaggle.com/datasets/kazanova/sentiment140",
		load: loadSentiment140,
	},
	"amazonreviews": {
		Name: "amazonreviews",
		File: "amazonreviews.txt.bz2",
		URL:  "https://www.kaggle.com/datasets/bittlingmayer/amazonreviews",
		load: loadAmazonReviews,
	},
	"imdb50k": {
		Name: "imdb50k",
		File: "imdb50k.csv",
		URL:  "https://www.kaggle.com/datasets/lakshmi25npathi/imdb-dataset-of-50k-movie-reviews",
		load: loadIMDB50K,
	},
	"test": {
		Name:     "test",
		File:     "test.csv",
		URL:      "https://github.com/Tymec/sentiment-analysis/blob/main/data/test.csv?raw=true",
		EvalOnly: true,
		direct:   true,
		load:     loadTestDataset,
	},
}

// SlangFile is the name of the optional slang expansion table inside
// the data directory.
const SlangFile = "slang.json"

const slangURL = "https://github.com/Tymec/sentiment-analysis/blob/main/data/slang.json?raw=true"

// ErrEmptyDataset is returned when a dataset file parses to zero
// usable samples.
var ErrEmptyDataset = errors.New("dataset contains no usable samples")

// Datasets returns all dataset names, sorted.
func Datasets() []string {
	names := make([]string, 0, len(datasetRegistry))
	for name := range datasetRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TrainableDatasets returns the datasets usable with the train command.
func TrainableDatasets() []string {
	var names []string
	for _, name := range Datasets() {
		if !datasetRegistry[name].EvalOnly {
			names = append(names, name)
		}
	}
	return names
}

// DatasetByName looks up a dataset descriptor.
func DatasetByName(name string) (DatasetInfo, error) {
	info, found := datasetRegistry[name]
	if !found {
		return DatasetInfo{}, fmt.Errorf("unknown dataset %q (available: %s)",
			name, strings.Join(Datasets(), ", "))
	}
	return info, nil
}

// LoadDataset reads a dataset from the data directory, fetching it
// first when the file is missing and directly downloadable.
func LoadDataset(ctx context.Context, name, dataDir string) ([]Review, error) {
	info, err := DatasetByName(name)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dataDir, info.File)
	if _, err := os.Stat(path); err != nil {
		if !info.direct {
			return nil, fmt.Errorf("dataset file %s is missing; download it from %s", path, info.URL)
		}
		if err := fetchFile(ctx, info.URL, path); err != nil {
			return nil, fmt.Errorf("fetch dataset %s: %w", name, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(info.File, ".bz2") {
		r = bzip2.NewReader(f)
	}

	reviews, err := info.load(r)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", name, err)
	}
	if len(reviews) == 0 {
		return nil, fmt.Errorf("dataset %s: %w", name, ErrEmptyDataset)
	}
	return reviews, nil
}

// loadSentiment140 parses the 6-column sentiment140 CSV: polarity, id,
// date, query, user, text. Polarity 0 is negative, 4 positive and 2
// (test split only) neutral.
func loadSentiment140(r io.Reader) ([]Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6
	cr.LazyQuotes = true

	var reviews []Review
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}

		var label Label
		switch record[0] {
		case "0":
			label = LabelNegative
		case "2":
			label = LabelNeutral
		case "4":
			label = LabelPositive
		default:
			return nil, fmt.Errorf("unexpected polarity %q", record[0])
		}

		text := strings.TrimSpace(record[5])
		if text == "" {
			continue
		}
		reviews = append(reviews, Review{Text: text, Label: label})
	}
	return reviews, nil
}

// loadAmazonReviews parses fastText-style lines:
// __label__1 <negative text> / __label__2 <positive text>.
func loadAmazonReviews(r io.Reader) ([]Review, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var reviews []Review
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		marker, text, found := strings.Cut(raw, " ")
		if !found {
			continue
		}
		var label Label
		switch marker {
		case "__label__1":
			label = LabelNegative
		case "__label__2":
			label = LabelPositive
		default:
			return nil, fmt.Errorf("line %d: unexpected label marker %q", line, marker)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		reviews = append(reviews, Review{Text: text, Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan reviews: %w", err)
	}
	return reviews, nil
}

// loadIMDB50K parses the review,sentiment CSV. Reviews contain HTML
// markup, which the tokenizer strips.
func loadIMDB50K(r io.Reader) ([]Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.LazyQuotes = true

	var reviews []Review
	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		row++
		if row == 1 && strings.EqualFold(record[0], "review") {
			continue
		}

		var label Label
		switch strings.ToLower(strings.TrimSpace(record[1])) {
		case "negative":
			label = LabelNegative
		case "positive":
			label = LabelPositive
		default:
			return nil, fmt.Errorf("row %d: unexpected sentiment %q", row, record[1])
		}

		text := strings.TrimSpace(record[0])
		if text == "" {
			continue
		}
		reviews = append(reviews, Review{Text: text, Label: label})
	}
	return reviews, nil
}

// loadTestDataset parses the small text,label CSV used by evaluate.
func loadTestDataset(r io.Reader) ([]Review, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.LazyQuotes = true

	var reviews []Review
	row := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		row++
		if row == 1 && strings.EqualFold(record[0], "text") {
			continue
		}

		var label Label
		switch strings.TrimSpace(record[1]) {
		case "0":
			label = LabelNegative
		case "1":
			label = LabelPositive
		case "2":
			label = LabelNeutral
		default:
			return nil, fmt.Errorf("row %d: unexpected label %q", row, record[1])
		}

		text := strings.TrimSpace(record[0])
		if text == "" {
			continue
		}
		reviews = append(reviews, Review{Text: text, Label: label})
	}
	return reviews, nil
}

// EnsureSlang loads the slang table from the data directory, fetching
// it first when missing. Callers fall back to the built-in table when
// this fails.
func EnsureSlang(ctx context.Context, dataDir string) (map[string]string, error) {
	path := filepath.Join(dataDir, SlangFile)
	if _, err := os.Stat(path); err != nil {
		if err := fetchFile(ctx, slangURL, path); err != nil {
			return nil, fmt.Errorf("fetch slang table: %w", err)
		}
	}
	return LoadSlang(path)
}

// fetchFile downloads url into path via a temp file, so a failed
// download never leaves a truncated dataset behind.
func fetchFile(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
