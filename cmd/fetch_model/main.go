package main

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/bytepiece/internal/model"
)

func download(url, destPath string) error {
	// 1. GET
	resp, err := http.Get(url) //nolint:gosec // url is supplied by the operator
	if err != nil {
		return errors.Wrapf(err, "GET %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	// 2. write to a temp file next to dest so a failed download never replaces a good model
	tmp := destPath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmp)
	}

	// 3. copy body -> file
	n, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "write %s", tmp)
	}
	if n == 0 {
		_ = os.Remove(tmp)
		return errors.Errorf("download %s: got 0 bytes", url)
	}

	// 4. validate before publishing
	if _, err := model.Load(tmp); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "validating download")
	}
	return errors.Wrap(os.Rename(tmp, destPath), "publishing model")
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	url := pflag.String("url", "", "model file to download (required)")
	dest := pflag.String("out", filepath.Join("testdata", "model", "bytepiece.model"), "destination path")
	pflag.Parse()

	if *url == "" {
		logger.Fatal().Msg("--url is required")
	}

	if err := os.MkdirAll(filepath.Dir(*dest), 0o755); err != nil {
		logger.Fatal().Err(err).Str("dir", filepath.Dir(*dest)).Msg("mkdir failed")
	}

	logger.Info().Str("url", *url).Msg("downloading")
	if err := download(*url, *dest); err != nil {
		logger.Fatal().Err(err).Msg("download failed")
	}
	logger.Info().Str("path", *dest).Msg("done")
}
