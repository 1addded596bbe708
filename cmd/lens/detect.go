package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/abelbrown/lens/internal/workflow"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ", ") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// detectOptions is one `lens detect` invocation.
type detectOptions struct {
	image     string
	sort      workflow.SortKey
	desc      bool
	saveDir   string
	questions []string
}

func runDetect() error {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	image := fs.String("image", "", "Image path or s3://bucket/key (required)")
	sortKey := fs.String("sort", "", "Sort by: class, confidence")
	desc := fs.Bool("desc", false, "Sort descending")
	saveDir := fs.String("save", "", "Save the annotated image into this directory")
	var questions stringList
	fs.Var(&questions, "ask", "Question about the detections (repeatable)")
	fs.Parse(os.Args[1:])
	if *image == "" && fs.NArg() > 0 {
		*image = fs.Arg(0)
	}
	if *image == "" {
		fs.Usage()
		return errors.New("-image is required")
	}

	key, err := workflow.ParseSortKey(*sortKey)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := setup(ctx, "detect")
	if err != nil {
		return err
	}
	defer rt.Close()

	ctrl := workflow.New(rt.client, rt.brain, nil, workflow.WithEventLogger(rt.events))
	img, err := rt.loader.Load(ctx, *image)
	if err != nil {
		return err
	}
	return detectImage(ctx, ctrl, img, rt.fetcher.Save, detectOptions{
		image:     *image,
		sort:      key,
		desc:      *desc,
		saveDir:   *saveDir,
		questions: questions,
	}, os.Stdout)
}

// detectImage stages img, detects, prints the sorted table, asks each
// question in order and optionally saves the annotated image. Failures are
// returned so deferred cleanup in the caller still runs.
func detectImage(ctx context.Context, ctrl *workflow.Controller, img workflow.Image,
	save func(ctx context.Context, ref, dir string) (string, error), opts detectOptions, out io.Writer) error {
	if err := ctrl.SetImage(&img); err != nil {
		return err
	}
	if err := ctrl.Detect(ctx); err != nil {
		return fmt.Errorf("%s %w", ctrl.Notice(), err)
	}

	if opts.sort != workflow.SortNone {
		ctrl.SetSortDirective(opts.sort)
		if opts.desc {
			ctrl.SetSortDirective(opts.sort)
		}
	}
	printDetections(out, ctrl)

	for _, q := range opts.questions {
		if err := ctrl.Ask(ctx, q); err != nil {
			return fmt.Errorf("%s %w", ctrl.Notice(), err)
		}
	}
	if len(opts.questions) > 0 {
		fmt.Fprintln(out)
		for _, turn := range ctrl.Turns() {
			label := "Me:"
			if turn.Role == workflow.RoleAssistant {
				label = "AI:"
			}
			fmt.Fprintf(out, "%s %s\n", label, turn.Text)
		}
	}

	if opts.saveDir == "" {
		return nil
	}
	ref := ctrl.AnnotatedRef()
	if ref == "" {
		fmt.Fprintln(os.Stderr, "warning: service returned no annotated image")
		return nil
	}
	path, err := save(ctx, ref, opts.saveDir)
	if err != nil {
		return fmt.Errorf("save annotated image: %w", err)
	}
	fmt.Fprintf(out, "\nSaved %s\n", path)
	return nil
}

func printDetections(out io.Writer, ctrl *workflow.Controller) {
	img := ctrl.Image()
	view := ctrl.View()
	fmt.Fprintf(out, "%s: %d objects\n", img.Name, len(view))
	if ref := ctrl.AnnotatedRef(); ref != "" {
		fmt.Fprintf(out, "annotated: %s\n", ref)
	}
	if len(view) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-3s %-24s %10s  %s\n", "#", "CLASS", "CONFIDENCE", "BOX")
	for i, d := range view {
		fmt.Fprintf(out, "%-3d %-24s %9.1f%%  %.0f, %.0f, %.0f, %.0f\n",
			i+1, truncate(d.Class, 24), d.Confidence*100,
			d.BBox[0], d.BBox[1], d.BBox[2], d.BBox[3])
	}
}
