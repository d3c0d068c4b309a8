package solver

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DocumentVersion tags the exchange schema. There is no migration logic;
// documents carry the tag so future revisions can tell themselves apart.
const DocumentVersion = 1

// Document is the JSON structure exchanged with editors and other tooling.
type Document struct {
	Version    int        `json:"version"`
	Room       *Room      `json:"room"`
	Pupils     []Pupil    `json:"pupils"`
	Rules      RuleList   `json:"rules"`
	Assignment Assignment `json:"assignment,omitempty"`
}

// Problem extracts the solving inputs from a document.
func (d *Document) Problem() *Problem {
	return &Problem{Room: d.Room, Pupils: d.Pupils, Rules: d.Rules}
}

type roomDoc struct {
	Rows     int         `json:"rows"`
	Cols     int         `json:"cols"`
	CellSize int         `json:"cellSize"`
	Blocked  []string    `json:"blocked"`
	Teacher  []string    `json:"teacher"`
	Seats    [][2]string `json:"seats"`
}

func coordKey(c Coord) string {
	return strconv.Itoa(c.Row) + "," + strconv.Itoa(c.Col)
}

func parseCoordKey(s string) (Coord, error) {
	rs, cs, ok := strings.Cut(s, ",")
	if !ok {
		return Coord{}, fmt.Errorf("solver: bad coordinate key %q", s)
	}
	row, err := strconv.Atoi(rs)
	if err != nil {
		return Coord{}, fmt.Errorf("solver: bad coordinate key %q", s)
	}
	col, err := strconv.Atoi(cs)
	if err != nil {
		return Coord{}, fmt.Errorf("solver: bad coordinate key %q", s)
	}
	return Coord{Row: row, Col: col}, nil
}

func sortedKeys(set map[Coord]struct{}) []string {
	coords := make([]Coord, 0, len(set))
	for c := range set {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, func(a, b Coord) int {
		if a.Row != b.Row {
			return a.Row - b.Row
		}
		return a.Col - b.Col
	})
	keys := make([]string, len(coords))
	for i, c := range coords {
		keys[i] = coordKey(c)
	}
	return keys
}

func (r *Room) MarshalJSON() ([]byte, error) {
	doc := roomDoc{
		Rows:     r.Rows,
		Cols:     r.Cols,
		CellSize: r.CellSize,
		Blocked:  sortedKeys(r.blocked),
		Teacher:  sortedKeys(r.teacher),
		Seats:    [][2]string{},
	}
	for _, id := range r.SeatIDs() {
		c, _ := ParseSeatID(id)
		doc.Seats = append(doc.Seats, [2]string{coordKey(c), r.seats[c]})
	}
	return json.Marshal(doc)
}

func (r *Room) UnmarshalJSON(data []byte) error {
	var doc roomDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*r = *NewRoom(doc.Rows, doc.Cols)
	if doc.CellSize > 0 {
		r.CellSize = doc.CellSize
	}
	for _, key := range doc.Blocked {
		c, err := parseCoordKey(key)
		if err != nil {
			return err
		}
		r.blocked[c] = struct{}{}
	}
	for _, key := range doc.Teacher {
		c, err := parseCoordKey(key)
		if err != nil {
			return err
		}
		r.teacher[c] = struct{}{}
	}
	for _, pair := range doc.Seats {
		c, err := parseCoordKey(pair[0])
		if err != nil {
			return err
		}
		id := pair[1]
		if id == "" {
			id = SeatID(c)
		}
		r.seats[c] = id
	}
	return nil
}

// RuleList carries the tagged-variant encoding: every rule object has a
// "type" field naming its variant. Unrecognized types decode to UnknownRule
// and re-encode byte for byte.
type RuleList []Rule

const (
	typeMinDistance           = "minDistance"
	typeMaxDistance           = "maxDistance"
	typeNotAdjacent           = "notAdjacent"
	typePreferFront           = "preferFront"
	typePreferAwayFromTeacher = "preferAwayFromTeacher"
	typeMustBeInRows          = "mustBeInRows"
	typeMustBeInSeats         = "mustBeInSeats"
	typeTagSeparation         = "tagSeparation"
)

func decodeRule(raw json.RawMessage) (Rule, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	var r Rule
	switch head.Type {
	case typeMinDistance:
		r = &MinDistance{}
	case typeMaxDistance:
		r = &MaxDistance{}
	case typeNotAdjacent:
		r = &NotAdjacent{}
	case typePreferFront:
		r = &PreferFront{}
	case typePreferAwayFromTeacher:
		r = &PreferAwayFromTeacher{}
	case typeMustBeInRows:
		r = &MustBeInRows{}
	case typeMustBeInSeats:
		r = &MustBeInSeats{}
	case typeTagSeparation:
		r = &TagSeparation{}
	default:
		u := &UnknownRule{Type: head.Type, raw: append([]byte(nil), raw...)}
		if err := json.Unmarshal(raw, &u.ruleBase); err != nil {
			return nil, err
		}
		return u, nil
	}
	if err := json.Unmarshal(raw, r); err != nil {
		return nil, err
	}
	return r, nil
}

func ruleTypeName(r Rule) string {
	switch r.(type) {
	case *MinDistance:
		return typeMinDistance
	case *MaxDistance:
		return typeMaxDistance
	case *NotAdjacent:
		return typeNotAdjacent
	case *PreferFront:
		return typePreferFront
	case *PreferAwayFromTeacher:
		return typePreferAwayFromTeacher
	case *MustBeInRows:
		return typeMustBeInRows
	case *MustBeInSeats:
		return typeMustBeInSeats
	case *TagSeparation:
		return typeTagSeparation
	}
	return ""
}

func encodeRule(r Rule) (json.RawMessage, error) {
	if u, ok := r.(*UnknownRule); ok {
		return json.RawMessage(u.raw), nil
	}
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["type"] = ruleTypeName(r)
	return json.Marshal(fields)
}

func (l RuleList) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, len(l))
	for i, r := range l {
		raw, err := encodeRule(r)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return json.Marshal(out)
}

func (l *RuleList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	rules := make(RuleList, 0, len(raws))
	for _, raw := range raws {
		r, err := decodeRule(raw)
		if err != nil {
			return err
		}
		rules = append(rules, r)
	}
	*l = rules
	return nil
}
