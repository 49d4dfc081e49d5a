// cbkc is the copybook compiler and decoder command.
//
//	cbkc layout <copybook>
//	cbkc schema [-keep-original] <copybook>
//	cbkc decode [flags] <copybook> <path|glob>...
//
// decode writes one JSON line per logical record. Input paths may be files,
// directories (walked recursively) or globs; names starting with "_" or "."
// are skipped. Files decode in parallel, records within a file in order.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bearlytools/copybook"
	"github.com/bearlytools/copybook/internal/conversions"
	"github.com/bearlytools/copybook/recordjson"
)

func main() {
	if len(os.Args) < 2 {
		exitf("usage: cbkc layout|schema|decode ...")
	}
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "layout":
		err = runLayout(ctx, os.Args[2:])
	case "schema":
		err = runSchema(ctx, os.Args[2:])
	case "decode":
		err = runDecode(ctx, os.Args[2:])
	default:
		exitf("unknown command %q", os.Args[1])
	}
	if err != nil {
		exit(err)
	}
}

func compile(ctx context.Context, path string) (*copybook.Copybook, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("problem reading file %s: %s", path, err)
	}
	return copybook.Parse(ctx, conversions.ByteSlice2String(content))
}

func runLayout(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cbkc layout <copybook>")
	}
	cb, err := compile(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Print(cb.LayoutReport())
	return nil
}

func runSchema(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	keep := fs.Bool("keep-original", false, "keep the declared nesting instead of collapsing the root group")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: cbkc schema [-keep-original] <copybook>")
	}
	cb, err := compile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	policy := copybook.CollapseRoot
	if *keep {
		policy = copybook.KeepOriginal
	}
	out, err := recordjson.MarshalSchema(cb.Schema(policy, segConfig("", nil, false, false)))
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runDecode(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	format := fs.String("format", "fixed", "record format: fixed, variable or text")
	recordSize := fs.Int("record-size", 0, "fixed record size override (0 uses the copybook size)")
	rdwWidth := fs.Int("rdw-width", 0, "RDW width in bytes for variable format (0 means 4)")
	rdwSelf := fs.Bool("rdw-includes-self", false, "RDW value counts its own width")
	rdwLittle := fs.Bool("rdw-little-endian", false, "read RDW headers little-endian")
	charset := fs.String("charset", "cp037", "cp037, cp1047, cp1140 or ascii")
	trimStart := fs.Int64("trim-start", 0, "bytes to skip at the start of each file")
	trimEnd := fs.Int64("trim-end", 0, "bytes to drop at the end of each file")
	strictNulls := fs.Bool("strict-nulls", false, "stricter null detection")
	segField := fs.String("segment-field", "", "discriminator field name for segmented files")
	segLevels := fs.String("segment-levels", "", `per-level accepted values, e.g. "COMPANY=C;CONTACT=P|Q"`)
	recordIDs := fs.Bool("record-ids", false, "inject a monotonically increasing id per root record")
	dropUnmatched := fs.Bool("drop-unmatched", false, "drop unmatched records instead of failing")
	workers := fs.Int("workers", 4, "files decoded in parallel")
	fs.Parse(args)
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: cbkc decode [flags] <copybook> <path|glob>...")
	}

	cb, err := compile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	files, err := expand(fs.Args()[1:])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no input files matched")
	}

	var opts []copybook.Option
	switch *format {
	case "fixed", "fixed_length":
		opts = append(opts, copybook.WithFixedLength(*recordSize))
	case "variable", "variable_length":
		opts = append(opts, copybook.WithVariableLength(*rdwWidth, *rdwSelf))
	case "text", "text_line":
		opts = append(opts, copybook.WithTextLines())
	default:
		return fmt.Errorf("unknown record format %q", *format)
	}
	if *rdwLittle {
		opts = append(opts, copybook.WithLittleEndianHeaders())
	}
	opts = append(opts, copybook.WithCharset(*charset))
	if *trimStart > 0 || *trimEnd > 0 {
		opts = append(opts, copybook.WithFileTrim(*trimStart, *trimEnd))
	}
	if *strictNulls {
		opts = append(opts, copybook.WithStrictNulls())
	}
	if *segField != "" {
		cfg, err := parseSegLevels(*segField, *segLevels, *recordIDs, *dropUnmatched)
		if err != nil {
			return err
		}
		opts = append(opts, copybook.WithSegments(cfg))
	}

	// One goroutine per file; record order is preserved within a file and a
	// file's output lines are written as one block.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)
	var mu sync.Mutex
	for _, file := range files {
		g.Go(func() error {
			lines, err := decodeFile(ctx, cb, file, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, l := range lines {
				fmt.Println(l)
			}
			return nil
		})
	}
	return g.Wait()
}

func decodeFile(ctx context.Context, cb *copybook.Copybook, path string, opts []copybook.Option) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	// Clip so the per-file append below cannot scribble on the shared slice.
	fileOpts := slices.Clip(opts)
	switch {
	case strings.HasSuffix(path, ".gz"):
		fileOpts = append(fileOpts, copybook.WithGzip())
	case strings.HasSuffix(path, ".zst"):
		fileOpts = append(fileOpts, copybook.WithZstd())
	}

	rd, err := cb.NewReader(ctx, f, st.Size(), path, fileOpts...)
	if err != nil {
		return nil, err
	}

	var lines []string
	for {
		rec, err := rd.Next(ctx)
		if err != nil {
			if errIsEOF(err) {
				return lines, nil
			}
			return nil, err
		}
		for _, derr := range rd.LastErrors() {
			slog.Warn("field decode error", "file", path, "err", derr)
		}
		out, err := recordjson.MarshalRecord(rec)
		if err != nil {
			return nil, err
		}
		lines = append(lines, strings.TrimSuffix(string(out), "\n"))
	}
}

func segConfig(field string, levels []copybook.SegmentLevel, ids, drop bool) copybook.SegmentConfig {
	return copybook.SegmentConfig{
		DiscriminatorField: field,
		Levels:             levels,
		GenerateIDs:        ids,
		DropUnmatched:      drop,
	}
}

// parseSegLevels parses "NAME=V1|V2;NAME2=V3" into hierarchy levels, root
// first.
func parseSegLevels(field, spec string, ids, drop bool) (copybook.SegmentConfig, error) {
	if spec == "" {
		return copybook.SegmentConfig{}, fmt.Errorf("-segment-field needs -segment-levels")
	}
	var levels []copybook.SegmentLevel
	for _, part := range strings.Split(spec, ";") {
		name, vals, ok := strings.Cut(part, "=")
		if !ok || name == "" || vals == "" {
			return copybook.SegmentConfig{}, fmt.Errorf("bad segment level %q, want NAME=V1|V2", part)
		}
		levels = append(levels, copybook.SegmentLevel{Name: name, Values: strings.Split(vals, "|")})
	}
	return segConfig(field, levels, ids, drop), nil
}

func exitf(s string, a ...any) {
	fmt.Printf(s+"\n", a...)
	os.Exit(1)
}

func exit(a ...any) {
	fmt.Println(a...)
	os.Exit(1)
}
