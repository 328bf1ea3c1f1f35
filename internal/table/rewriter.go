// Package table rewrites compiled SRST2 allele tables, annotating variant
// calls with the cluster identifiers of their consensus sequences.
package table

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/bactgen/clusterid/internal/clstr"
)

// Markers trailing an allele call.
const (
	// VariantMarker flags a call as a divergent variant requiring a
	// cluster identifier.
	VariantMarker = "*"
	// UncertainMarker flags a low-confidence call. It is stripped from
	// every call regardless of coverage.
	UncertainMarker = "?"
)

// Rewriter streams a compiled allele table, appending cluster identifiers
// to variant-marked calls.
type Rewriter struct {
	index  clstr.Index
	logger *zap.Logger
}

// NewRewriter creates a rewriter backed by the given cluster index.
func NewRewriter(index clstr.Index) *Rewriter {
	return &Rewriter{
		index:  index,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for progress messages.
func (rw *Rewriter) SetLogger(l *zap.Logger) {
	rw.logger = l
}

// RewriteFile opens the allele table at path and rewrites it to w.
// Use "-" to read the table from stdin.
func (rw *Rewriter) RewriteFile(path string, w io.Writer) error {
	if path == "-" {
		return rw.Rewrite(os.Stdin, w)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open allele table: %w", err)
	}
	defer f.Close()

	return rw.Rewrite(f, w)
}

// Rewrite reads the allele table from r and writes the rewritten table to
// w. The first line is the header and passes through unchanged; every
// following row keeps its sample column and field order, with variant-marked
// calls rewritten to "name.clusterID".
func (rw *Rewriter) Rewrite(r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	out := bufio.NewWriter(w)

	header, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("read header: %w", err)
	}
	if header == "" {
		return fmt.Errorf("no header line found")
	}
	if _, werr := out.WriteString(strings.TrimRight(header, "\r\n") + "\n"); werr != nil {
		return fmt.Errorf("write header: %w", werr)
	}

	rows := 0
	for err != io.EOF {
		var line string
		line, err = reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read table row: %w", err)
		}
		if line == "" {
			continue
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		row, rerr := rw.rewriteRow(line)
		if rerr != nil {
			return rerr
		}
		if _, werr := out.WriteString(row + "\n"); werr != nil {
			return fmt.Errorf("write table row: %w", werr)
		}
		rows++
	}

	if err := out.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	rw.logger.Info("rewrote allele table", zap.Int("rows", rows))
	return nil
}

// rewriteRow rewrites one data row. The first field is the sample
// identifier and passes through unchanged.
func (rw *Rewriter) rewriteRow(line string) (string, error) {
	fields := strings.Split(line, "\t")
	sample := fields[0]

	for i, call := range fields[1:] {
		rewritten, err := rw.rewriteCall(sample, call)
		if err != nil {
			return "", err
		}
		fields[i+1] = rewritten
	}

	return strings.Join(fields, "\t"), nil
}

// rewriteCall rewrites a single allele call. Exactly one trailing
// uncertainty marker is stripped first; if the remaining call carries the
// variant marker, the marker is replaced by ".clusterID" from the index.
func (rw *Rewriter) rewriteCall(sample, call string) (string, error) {
	call = strings.TrimSuffix(call, UncertainMarker)

	if !strings.HasSuffix(call, VariantMarker) {
		return call, nil
	}

	allele := strings.TrimSuffix(call, VariantMarker)
	clusterID, ok := rw.index.Lookup(sample, allele)
	if !ok {
		return "", &LookupError{Sample: sample, Allele: allele}
	}

	return allele + "." + clusterID, nil
}

// LookupError reports a variant-marked allele call with no entry in the
// cluster index, meaning the table and the cluster report disagree.
type LookupError struct {
	Sample string
	Allele string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no cluster for variant allele %q of sample %q", e.Allele, e.Sample)
}
