package apkg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	// schemaVersion is the legacy Anki2 collection format.
	schemaVersion = 11
	deckID        = 1
	deckConfID    = 1

	frontTemplate = "{{Front}}"
	backTemplate  = "{{FrontSide}}<hr id=answer>{{Back}}"

	cardCSS = `.card {
 font-family: arial;
 font-size: 20px;
 text-align: center;
 color: black;
 background-color: white;
}`
)

type deck struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Desc             string `json:"desc"`
	Mod              int64  `json:"mod"`
	USN              int    `json:"usn"`
	Collapsed        bool   `json:"collapsed"`
	BrowserCollapsed bool   `json:"browserCollapsed"`
	NewToday         [2]int `json:"newToday"`
	RevToday         [2]int `json:"revToday"`
	LrnToday         [2]int `json:"lrnToday"`
	TimeToday        [2]int `json:"timeToday"`
	Dyn              int    `json:"dyn"`
	Conf             int64  `json:"conf"`
	ExtendNew        int    `json:"extendNew"`
	ExtendRev        int    `json:"extendRev"`
}

type modelField struct {
	Name   string `json:"name"`
	Ord    int    `json:"ord"`
	Sticky bool   `json:"sticky"`
	RTL    bool   `json:"rtl"`
	Font   string `json:"font"`
	Size   int    `json:"size"`
	Media  []any  `json:"media"`
}

type modelTemplate struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	QFmt  string `json:"qfmt"`
	AFmt  string `json:"afmt"`
	DID   *int64 `json:"did"`
	BQFmt string `json:"bqfmt"`
	BAFmt string `json:"bafmt"`
}

type model struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Type      int             `json:"type"`
	Mod       int64           `json:"mod"`
	USN       int             `json:"usn"`
	SortF     int             `json:"sortf"`
	DID       int64           `json:"did"`
	Tmpls     []modelTemplate `json:"tmpls"`
	Flds      []modelField    `json:"flds"`
	CSS       string          `json:"css"`
	LatexPre  string          `json:"latexPre"`
	LatexPost string          `json:"latexPost"`
	Req       [][]any         `json:"req"`
	Tags      []string        `json:"tags"`
	Vers      []any           `json:"vers"`
}

type newConf struct {
	Delays        []int `json:"delays"`
	Ints          []int `json:"ints"`
	InitialFactor int   `json:"initialFactor"`
	Order         int   `json:"order"`
	PerDay        int   `json:"perDay"`
	Bury          bool  `json:"bury"`
	Separate      bool  `json:"separate"`
}

type revConf struct {
	PerDay   int     `json:"perDay"`
	Ease4    float64 `json:"ease4"`
	Fuzz     float64 `json:"fuzz"`
	IvlFct   float64 `json:"ivlFct"`
	MaxIvl   int     `json:"maxIvl"`
	Bury     bool    `json:"bury"`
	MinSpace int     `json:"minSpace"`
}

type lapseConf struct {
	Delays      []int   `json:"delays"`
	Mult        float64 `json:"mult"`
	MinInt      int     `json:"minInt"`
	LeechFails  int     `json:"leechFails"`
	LeechAction int     `json:"leechAction"`
}

type deckConf struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Mod      int64     `json:"mod"`
	USN      int       `json:"usn"`
	MaxTaken int       `json:"maxTaken"`
	Autoplay bool      `json:"autoplay"`
	Timer    int       `json:"timer"`
	Replayq  bool      `json:"replayq"`
	Dyn      bool      `json:"dyn"`
	New      newConf   `json:"new"`
	Rev      revConf   `json:"rev"`
	Lapse    lapseConf `json:"lapse"`
}

type collectionConf struct {
	ActiveDecks   []int64 `json:"activeDecks"`
	CurDeck       int64   `json:"curDeck"`
	CurModel      string  `json:"curModel"`
	NewSpread     int     `json:"newSpread"`
	CollapseTime  int     `json:"collapseTime"`
	TimeLim       int     `json:"timeLim"`
	EstTimes      bool    `json:"estTimes"`
	DueCounts     bool    `json:"dueCounts"`
	NextPos       int     `json:"nextPos"`
	SortType      string  `json:"sortType"`
	SortBackwards bool    `json:"sortBackwards"`
	AddToCur      bool    `json:"addToCur"`
}

// collection holds the JSON-encoded blobs stored in the single col row.
type collection struct {
	crt     int64
	mod     int64
	modelID int64
	conf    string
	models  string
	decks   string
	dconf   string
}

// newCollection builds the col row for one deck named deckName holding
// noteCount notes of the Basic model.
func newCollection(deckName string, noteCount int, now time.Time) (*collection, error) {
	modelID := now.Unix()
	modSec := now.Unix()

	decks := map[string]deck{
		strconv.Itoa(deckID): {
			ID:        deckID,
			Name:      deckName,
			Mod:       modSec,
			USN:       -1,
			Conf:      deckConfID,
			ExtendNew: 10,
			ExtendRev: 50,
		},
	}

	models := map[string]model{
		strconv.FormatInt(modelID, 10): {
			ID:    modelID,
			Name:  "Basic",
			Type:  0,
			Mod:   modSec,
			USN:   -1,
			SortF: 0,
			DID:   deckID,
			Tmpls: []modelTemplate{{
				Name: "Card 1",
				Ord:  0,
				QFmt: frontTemplate,
				AFmt: backTemplate,
			}},
			Flds: []modelField{
				{Name: "Front", Ord: 0, Font: "Arial", Size: 20, Media: []any{}},
				{Name: "Back", Ord: 1, Font: "Arial", Size: 20, Media: []any{}},
			},
			CSS:       cardCSS,
			LatexPre:  "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n",
			LatexPost: "\\end{document}",
			Req:       [][]any{{0, "all", []int{0}}},
			Tags:      []string{},
			Vers:      []any{},
		},
	}

	dconf := map[string]deckConf{
		strconv.Itoa(deckConfID): {
			ID:       deckConfID,
			Name:     "Default",
			MaxTaken: 60,
			Autoplay: true,
			Replayq:  true,
			New: newConf{
				Delays:        []int{1, 10},
				Ints:          []int{1, 4, 7},
				InitialFactor: 2500,
				Order:         1,
				PerDay:        20,
				Bury:          true,
				Separate:      true,
			},
			Rev: revConf{
				PerDay:   200,
				Ease4:    1.3,
				Fuzz:     0.05,
				IvlFct:   1,
				MaxIvl:   36500,
				Bury:     true,
				MinSpace: 1,
			},
			Lapse: lapseConf{
				Delays:     []int{10},
				Mult:       0,
				MinInt:     1,
				LeechFails: 8,
			},
		},
	}

	conf := collectionConf{
		ActiveDecks:  []int64{deckID},
		CurDeck:      deckID,
		CurModel:     strconv.FormatInt(modelID, 10),
		CollapseTime: 1200,
		EstTimes:     true,
		DueCounts:    true,
		NextPos:      noteCount + 1,
		SortType:     "noteFld",
		AddToCur:     true,
	}

	c := &collection{
		crt:     now.Unix(),
		mod:     now.UnixMilli(),
		modelID: modelID,
	}

	var err error
	if c.decks, err = marshalString(decks); err != nil {
		return nil, fmt.Errorf("encode decks: %w", err)
	}
	if c.models, err = marshalString(models); err != nil {
		return nil, fmt.Errorf("encode models: %w", err)
	}
	if c.dconf, err = marshalString(dconf); err != nil {
		return nil, fmt.Errorf("encode dconf: %w", err)
	}
	if c.conf, err = marshalString(conf); err != nil {
		return nil, fmt.Errorf("encode conf: %w", err)
	}
	return c, nil
}

func marshalString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
