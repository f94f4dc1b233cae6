package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Matches the RTT token of Linux ping lines like
// "64 bytes from 1.1.1.1: icmp_seq=1 ttl=57 time=46.7 ms".
var rttRe = regexp.MustCompile(`time=([0-9]+(?:\.[0-9]+)?)\s*ms`)

// ErrNoSamples is returned when an input file holds no parsable RTT line.
var ErrNoSamples = errors.New("no RTT samples parsed")

// NoSamplesError names the input that yielded no samples. It matches
// ErrNoSamples under errors.Is.
type NoSamplesError struct {
	Name string
	Path string
}

func (e *NoSamplesError) Error() string {
	return fmt.Sprintf("%s from %s (%s): check ping file format", ErrNoSamples, e.Path, e.Name)
}

func (e *NoSamplesError) Is(target error) bool {
	return target == ErrNoSamples
}

// ParseRTT extracts one RTT value in milliseconds from every line carrying a
// time=<n> ms token, in line order. Other lines are skipped. Lines end at \n,
// \r\n or a lone \r and may be of any length. Invalid UTF-8 bytes are dropped
// rather than failing the read.
func ParseRTT(r io.Reader) ([]float64, error) {
	var rtts []float64

	reader := bufio.NewReader(transform.NewReader(r, transform.Chain(
		unicode.UTF8.NewDecoder(),
		runes.Remove(runes.Predicate(func(c rune) bool { return c == utf8.RuneError })),
	)))
	for {
		chunk, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, errors.Wrap(readErr, "read ping output")
		}
		for _, line := range strings.Split(chunk, "\r") {
			matches := rttRe.FindStringSubmatch(line)
			if len(matches) < 2 {
				continue
			}
			// the pattern only admits plain decimals, so this cannot fail
			v, err := strconv.ParseFloat(matches[1], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parse rtt %q", matches[1])
			}
			rtts = append(rtts, v)
		}
		if readErr == io.EOF {
			return rtts, nil
		}
	}
}

// ParseRTTFile parses the ping output stored at path.
func ParseRTTFile(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open ping output")
	}
	defer file.Close()

	rtts, err := ParseRTT(file)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return rtts, nil
}

// loadSeries parses path and fails with ErrNoSamples when nothing matched.
func loadSeries(name, path string) (Series, error) {
	rtts, err := ParseRTTFile(path)
	if err != nil {
		return Series{}, err
	}
	if len(rtts) == 0 {
		return Series{}, &NoSamplesError{Name: name, Path: path}
	}
	return Series{Name: name, Path: path, Samples: rtts}, nil
}
