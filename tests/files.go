// Package tests provides the external test fixtures, downloaded on first
// use.
package tests

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

func decompress(zipFile, dest string) error {
	r, err := zip.OpenReader(zipFile)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		fname := strings.Replace(f.Name, "gb-test-roms-master", "gb-test-roms", 1)
		fpath := filepath.Join(dest, fname)
		if !strings.HasPrefix(fpath, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("%s: illegal file path", fpath)
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, os.ModePerm)
			continue
		}

		if err = os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}

		outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			rc.Close()
			return err
		}

		_, err = io.Copy(outFile, rc)

		outFile.Close()
		rc.Close()

		if err != nil {
			return err
		}
	}

	log.Println("decompressed", len(r.File), "files")
	return nil
}

var errNotFound = errors.New("not found")

func download(url string, w io.Writer) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("GET %s: %w", url, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func downloadTestRoms(tb testing.TB, dest string) {
	const url = `https://github.com/retrio/gb-test-roms/archive/refs/heads/master.zip`

	tmpf, err := os.CreateTemp("", "gb-test-roms-*-.zip")
	if err != nil {
		tb.Fatal(err)
	}
	defer os.Remove(tmpf.Name())
	defer tmpf.Close()

	if err := download(url, tmpf); err != nil {
		tb.Fatal(err)
	}

	if err := decompress(tmpf.Name(), dest); err != nil {
		tb.Fatalf("failed to decompress test roms: %s", err)
	}
}

func testsDir() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Dir(b)
}

var romsOnce sync.Once

// RomsPath returns the directory of Blargg's test roms, downloading them
// the first time.
func RomsPath(tb testing.TB) string {
	romsDir := filepath.Join(testsDir(), "gb-test-roms")
	romsOnce.Do(func() {
		if _, err := os.Stat(romsDir); errors.Is(err, fs.ErrNotExist) {
			tb.Log("gb-test-roms directory not found, downloading it...")
			downloadTestRoms(tb, testsDir())
			tb.Log("Test roms downloaded in", romsDir)
		}
	})
	return romsDir
}

// SM83TestName returns the name of the single step test file of an opcode.
// CB prefixed opcodes are in "cb XX.json".
func SM83TestName(opcode uint8, cb bool) string {
	if cb {
		return fmt.Sprintf("cb %02x.json", opcode)
	}
	return fmt.Sprintf("%02x.json", opcode)
}

// download all 512 (one per opcode, plus CB opcodes) SM83 single step test
// files into dest dir. Opcodes without test file are skipped.
func downloadSM83Tests(tb testing.TB, dest string) {
	const urlbase = `https://raw.githubusercontent.com/SingleStepTests/sm83/main/v1/`

	tempdir, err := os.MkdirTemp("", "sm83.single.step.tests.*")
	if err != nil {
		tb.Fatal(err)
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i := range 512 {
		name := SM83TestName(uint8(i), i >= 256)
		url := urlbase + strings.ReplaceAll(name, " ", "%20")

		g.Go(func() error {
			path := filepath.Join(tempdir, name)
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()

			err = download(url, f)
			if errors.Is(err, errNotFound) {
				return os.Remove(path)
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		tb.Fatalf("failed to download all files: %s", err)
	}

	if err := os.Rename(tempdir, dest); err != nil {
		tb.Fatal(err)
	}
	tb.Log("renamed", tempdir, "to", dest)
}

var sm83Once sync.Once

// SM83TestsPath returns the directory of the SM83 single step tests,
// downloading them the first time.
func SM83TestsPath(tb testing.TB) string {
	dir := filepath.Join(testsDir(), "sm83.single.step.tests")
	sm83Once.Do(func() {
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			tb.Log("sm83.single.step.tests directory not found, downloading it...")
			downloadSM83Tests(tb, dir)
			tb.Log("SM83 single step tests downloaded in", dir)
		}
	})
	return dir
}
