// Package clstr parses cd-hit-est cluster reports into an in-memory index
// of cluster assignments keyed by sample and allele name.
package clstr

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Markers framing the fields of a cluster member line.
const (
	seqIDPrefix    = ">"
	seqIDSuffix    = ".consensus"
	samplePrefix   = "|"
	sampleSuffix   = "..."
	clusterHeading = ">"
)

// ParseFile reads a cd-hit-est .clstr file and builds the cluster index.
func ParseFile(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cluster file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a cluster report from r and builds the cluster index.
//
// Header lines (">Cluster N") set the current cluster identifier to their
// last whitespace-separated token; every following member line is assigned
// that identifier until the next header. Blank lines are skipped.
func Parse(r io.Reader) (Index, error) {
	idx := make(Index)
	reader := bufio.NewReader(r)

	var clusterID string
	headerSeen := false
	lineNumber := 0

	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read cluster file: %w", err)
		}
		if line == "" && err == io.EOF {
			break
		}
		lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if err == io.EOF {
				break
			}
			continue
		}

		if strings.HasPrefix(line, clusterHeading) {
			fields := strings.Fields(line)
			clusterID = fields[len(fields)-1]
			headerSeen = true
		} else {
			if !headerSeen {
				return nil, &ParseError{
					Line:    lineNumber,
					Message: "member line before any cluster header",
				}
			}
			seqID, sample, perr := parseMemberLine(line)
			if perr != nil {
				perr.Line = lineNumber
				return nil, perr
			}
			idx.Add(sample, AlleleName(seqID), clusterID)
		}

		if err == io.EOF {
			break
		}
	}

	return idx, nil
}

// parseMemberLine extracts the sequence identifier and sample identifier
// from a member line. The sequence identifier sits between the first ">"
// and the following ".consensus"; the sample identifier sits between the
// first "|" and the following "...".
func parseMemberLine(line string) (seqID, sample string, err *ParseError) {
	seqID, ok := between(line, seqIDPrefix, seqIDSuffix)
	if !ok {
		return "", "", &ParseError{
			Message: fmt.Sprintf("no %q-framed sequence identifier in member line %q", seqIDSuffix, line),
		}
	}

	sample, ok = between(line, samplePrefix, sampleSuffix)
	if !ok {
		return "", "", &ParseError{
			Message: fmt.Sprintf("no %q-framed sample identifier in member line %q", samplePrefix+sampleSuffix, line),
		}
	}

	return seqID, sample, nil
}

// between returns the shortest substring of s delimited by the first
// occurrence of open and the next occurrence of close after it.
func between(s, open, close string) (string, bool) {
	i := strings.Index(s, open)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(open):]
	j := strings.Index(rest, close)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}

// ParseError represents an error during cluster report parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cluster parse error at line %d: %s", e.Line, e.Message)
}
