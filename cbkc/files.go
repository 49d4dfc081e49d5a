package main

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// expand resolves input arguments to a sorted, de-duplicated file list. Each
// argument may be a file, a directory (walked recursively) or a glob.
// Entries whose base name starts with "_" or "." are skipped, matching the
// convention for hidden and in-progress files.
func expand(args []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if hidden(p) || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	for _, arg := range args {
		st, err := os.Stat(arg)
		switch {
		case err == nil && st.IsDir():
			err := filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					if p != arg && hidden(p) {
						return filepath.SkipDir
					}
					return nil
				}
				add(p)
				return nil
			})
			if err != nil {
				return nil, err
			}
		case err == nil:
			add(arg)
		default:
			matches, err := filepath.Glob(arg)
			if err != nil {
				return nil, err
			}
			for _, m := range matches {
				if st, err := os.Stat(m); err == nil && !st.IsDir() {
					add(m)
				}
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func hidden(p string) bool {
	base := filepath.Base(p)
	return strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".")
}

func errIsEOF(err error) bool { return err == io.EOF }
