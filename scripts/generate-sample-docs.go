//go:build ignore

// Package main generates a synthetic document corpus for manual testing.
// Usage: go run scripts/generate-sample-docs.go -docs 200 -output testdata/corpus
//
// The generated files can be uploaded to a bucket (gsutil cp -r) to
// exercise process, search and sync against realistic content.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

var (
	numDocs   = flag.Int("docs", 200, "Number of documents to generate")
	outputDir = flag.String("output", "testdata/corpus", "Output directory")
	seed      = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var subjects = []string{
	"quarterly revenue", "incident response", "vendor contract",
	"onboarding checklist", "release notes", "capacity planning",
	"customer feedback", "security audit", "travel policy",
	"meeting minutes",
}

var verbs = []string{
	"summarizes", "reviews", "approves", "postpones", "escalates",
	"documents", "tracks", "finalizes",
}

var topics = []string{
	"the payment pipeline", "the archival project", "the Q3 targets",
	"the storage migration", "the hiring plan", "the outage on Friday",
	"the new retention rules", "the budget forecast",
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	prefixes := []string{"reports", "notes", "contracts", "archive"}
	for _, p := range prefixes {
		if err := os.MkdirAll(filepath.Join(*outputDir, p), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
			os.Exit(1)
		}
	}

	for i := 0; i < *numDocs; i++ {
		prefix := prefixes[rng.Intn(len(prefixes))]
		name := fmt.Sprintf("%s-%04d", strings.ReplaceAll(subjects[rng.Intn(len(subjects))], " ", "-"), i)

		var ext string
		var content []byte
		switch rng.Intn(3) {
		case 0:
			ext = ".csv"
			content = []byte(generateCSV(rng))
		default:
			ext = ".txt"
			content = []byte(generateProse(rng))
		}

		path := filepath.Join(*outputDir, prefix, name+ext)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	fmt.Printf("generated %d documents under %s\n", *numDocs, *outputDir)
}

func generateProse(rng *rand.Rand) string {
	var b strings.Builder
	paragraphs := 2 + rng.Intn(6)
	for p := 0; p < paragraphs; p++ {
		sentences := 3 + rng.Intn(5)
		for s := 0; s < sentences; s++ {
			fmt.Fprintf(&b, "This document %s %s regarding %s. ",
				verbs[rng.Intn(len(verbs))],
				subjects[rng.Intn(len(subjects))],
				topics[rng.Intn(len(topics))])
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func generateCSV(rng *rand.Rand) string {
	var b strings.Builder
	b.WriteString("date,item,amount\n")
	rows := 5 + rng.Intn(50)
	for r := 0; r < rows; r++ {
		fmt.Fprintf(&b, "2026-%02d-%02d,%s,%d.%02d\n",
			1+rng.Intn(12), 1+rng.Intn(28),
			strings.ReplaceAll(subjects[rng.Intn(len(subjects))], " ", "_"),
			rng.Intn(10000), rng.Intn(100))
	}
	return b.String()
}
