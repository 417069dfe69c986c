// Command getdata downloads the rag-mini-wikipedia dataset and writes it as
// JSON, and converts flat "Q:/A:" text files into JSON question/answer pairs.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"rag-prep/internal/app"
	"rag-prep/internal/dataset"
)

type options struct {
	passagesOut string
	qaOut       string
	flatQAIn    string
	flatQAOut   string
	skipDataset bool
}

func main() {
	var opts options
	flag.StringVar(&opts.passagesOut, "passages-out", "passages.json", "output path for the passages corpus")
	flag.StringVar(&opts.qaOut, "qa-out", "question_answer.json", "output path for the question/answer split")
	flag.StringVar(&opts.flatQAIn, "qa-file", "", "optional flat Q:/A: text file to convert")
	flag.StringVar(&opts.flatQAOut, "qa-file-out", "cat_Qs.json", "output path for the converted flat file")
	flag.BoolVar(&opts.skipDataset, "skip-dataset", false, "skip the HuggingFace download")
	flag.Parse()

	deps, err := app.BuildCore()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	if err := run(context.Background(), deps, dataset.NewClient(), opts); err != nil {
		deps.Log.Error("getdata failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, deps app.CoreDeps, client *dataset.Client, opts options) error {
	if !opts.skipDataset {
		if err := downloadDataset(ctx, deps, client, opts); err != nil {
			return err
		}
	}
	if opts.flatQAIn != "" {
		if err := convertFlatQA(deps, opts.flatQAIn, opts.flatQAOut); err != nil {
			return err
		}
	}
	return nil
}

func downloadDataset(ctx context.Context, deps app.CoreDeps, client *dataset.Client, opts options) error {
	name := deps.Config.HFDataset

	passages, err := dataset.DownloadPassages(ctx, client, name)
	if err != nil {
		return fmt.Errorf("download passages: %w", err)
	}
	if err := dataset.WriteJSON(opts.passagesOut, passages); err != nil {
		return err
	}
	deps.Log.Info("wrote passages", "count", len(passages), "path", opts.passagesOut)

	pairs, err := dataset.DownloadQuestionAnswers(ctx, client, name)
	if err != nil {
		return fmt.Errorf("download question/answer split: %w", err)
	}
	if err := dataset.WriteJSON(opts.qaOut, pairs); err != nil {
		return err
	}
	deps.Log.Info("wrote question/answer pairs", "count", len(pairs), "path", opts.qaOut)
	return nil
}

func convertFlatQA(deps app.CoreDeps, in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("open qa file: %w", err)
	}
	defer f.Close()

	pairs, err := dataset.ParseQAFile(f)
	if err != nil {
		return err
	}
	if err := dataset.WriteJSON(out, pairs); err != nil {
		return err
	}
	deps.Log.Info("converted flat qa file", "count", len(pairs), "in", in, "out", out)
	return nil
}
