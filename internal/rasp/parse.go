// Package rasp reads solid rocket motor thrust curves in the RASP (.eng)
// format published by thrustcurve.org.
//
// A RASP file is a header line
//
//	name diameter length delays propellant-mass total-mass manufacturer
//
// followed by "time thrust" pairs. Lines starting with ';' are comments.
package rasp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/motor"
)

const headerFields = 7

// Parse reads one motor from r. When the first data point is later than
// t=0 a (0, 0) sample is prepended so the curve ramps up from ignition.
func Parse(r io.Reader) (*motor.Motor, error) {
	sc := bufio.NewScanner(r)

	var (
		m      *motor.Motor
		times  []float64
		thrust []float64
		lineNo int
	)

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || isComment(line) {
			continue
		}
		fields := strings.Fields(line)

		if m == nil {
			hdr, err := parseHeader(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			m = hdr
			continue
		}

		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: %w: expected \"time thrust\", got %q", lineNo, dynamo.ErrInvalidInput, line)
		}
		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: bad time %q", lineNo, dynamo.ErrInvalidInput, fields[0])
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: bad thrust %q", lineNo, dynamo.ErrInvalidInput, fields[1])
		}
		times = append(times, t)
		thrust = append(thrust, f)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if m == nil {
		return nil, fmt.Errorf("%w: no motor header found", dynamo.ErrInvalidInput)
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: motor %s has no thrust data", dynamo.ErrInvalidInput, m.Name)
	}

	if times[0] > 0 {
		times = append([]float64{0}, times...)
		thrust = append([]float64{0}, thrust...)
	}

	p, err := motor.NewProfile(times, thrust)
	if err != nil {
		return nil, fmt.Errorf("motor %s: %w", m.Name, err)
	}
	m.Profile = p
	return m, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*motor.Motor, error) {
	return Parse(strings.NewReader(s))
}

func isComment(line string) bool {
	return strings.HasPrefix(line, ";")
}

func parseHeader(fields []string) (*motor.Motor, error) {
	if len(fields) < headerFields {
		return nil, fmt.Errorf("%w: header needs %d fields, got %d", dynamo.ErrInvalidInput, headerFields, len(fields))
	}

	nums := make([]float64, 4)
	for i, idx := range []int{1, 2, 4, 5} {
		v, err := strconv.ParseFloat(fields[idx], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad header field %d %q", dynamo.ErrInvalidInput, idx+1, fields[idx])
		}
		nums[i] = v
	}

	return &motor.Motor{
		Name:           fields[0],
		Diameter:       nums[0],
		Length:         nums[1],
		Delays:         fields[3],
		PropellantMass: nums[2],
		TotalMass:      nums[3],
		Manufacturer:   strings.Join(fields[6:], " "),
	}, nil
}
