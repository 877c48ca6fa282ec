package kinematics

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParsePath reads a path of board coordinates, one point per line. A line
// is either "x,y" or a G0/G1 move with X and Y words; a G0/G1 word that
// omits an axis keeps the previous value. Text after ';' or '(' is a
// comment and blank lines are skipped.
func ParsePath(r io.Reader) ([]Coordinate, error) {
	var path []Coordinate
	var last Coordinate
	haveLast := false

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := stripComment(scanner.Text())
		if line == "" {
			continue
		}

		var c Coordinate
		var err error
		switch line[0] {
		case 'G', 'g':
			var ok bool
			c, ok, err = parseMoveWords(line, last, haveLast)
			if err == nil && !ok {
				// Not a move
				continue
			}
		default:
			c, err = ParseCoordinate(line)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		path = append(path, c)
		last, haveLast = c, true
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return path, nil
}

func stripComment(line string) string {
	if i := strings.IndexAny(line, ";("); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// parseMoveWords parses "G0 X.. Y.." / "G1 X.. Y..". Other G codes report
// ok=false. Feed rates are ignored; every move runs at the planned speed.
func parseMoveWords(line string, last Coordinate, haveLast bool) (Coordinate, bool, error) {
	fields := strings.Fields(strings.ToUpper(line))
	code, err := strconv.Atoi(fields[0][1:])
	if err != nil {
		return Coordinate{}, false, fmt.Errorf("bad command %q", fields[0])
	}
	if code != 0 && code != 1 {
		return Coordinate{}, false, nil
	}

	c := last
	var gotX, gotY bool
	for _, word := range fields[1:] {
		if len(word) < 2 {
			return Coordinate{}, false, fmt.Errorf("bad word %q", word)
		}
		value, err := strconv.ParseFloat(word[1:], 64)
		if err != nil {
			return Coordinate{}, false, fmt.Errorf("bad word %q: %w", word, err)
		}
		switch word[0] {
		case 'X':
			c.X, gotX = value, true
		case 'Y':
			c.Y, gotY = value, true
		}
	}

	if !gotX && !gotY {
		return Coordinate{}, false, nil
	}
	if !haveLast && !(gotX && gotY) {
		return Coordinate{}, false, fmt.Errorf("first move must set both X and Y")
	}
	return c, true, nil
}
