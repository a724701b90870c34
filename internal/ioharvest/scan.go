package ioharvest

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"
)

// checkEvery sets how often, in lines, cancellation is checked.
const checkEvery = 10_000

// lineFunc receives a trimmed non-empty line and its 1-based number.
type lineFunc func(line []byte, num int)

// scanFile calls fn for every non-blank line of path. Files ending with
// ".gz" are decompressed. Lines have no length limit.
func scanFile(
	ctx context.Context,
	path string,
	progress bool,
	fn lineFunc,
) error {
	f, err := os.Open(path)
	if err != nil {
		return ReadFileError(path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if progress {
		info, err := f.Stat()
		if err != nil {
			return ReadFileError(path, err)
		}
		bar := pb.Full.Start64(info.Size())
		bar.Set(pb.Bytes, true)
		bar.Set("prefix", filepath.Base(path)+": ")
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
		r = bar.NewProxyReader(f)
	}

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return ReadFileError(path, err)
		}
		defer gz.Close()
		r = gz
	}

	br := bufio.NewReaderSize(r, 1<<20)
	var num int
	for {
		if num%checkEvery == 0 {
			select {
			case <-ctx.Done():
				return CancelledError(ctx.Err())
			default:
			}
		}

		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			num++
			if line = bytes.TrimSpace(line); len(line) > 0 {
				fn(line, num)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return ScanError(path, num, err)
		}
	}
}
