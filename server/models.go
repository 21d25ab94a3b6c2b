package main

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// IntSlice stores a JSON-encoded []int in a text column. Rooms use it for
// their puzzle order, which is written once at creation and never changed.
type IntSlice []int

// Value implements driver.Valuer.
func (s IntSlice) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	return string(b), err
}

// Scan implements sql.Scanner.
func (s *IntSlice) Scan(src interface{}) error {
	return scanJSON(src, s)
}

// StringSlice stores a JSON-encoded []string in a text column.
type StringSlice []string

// Value implements driver.Valuer.
func (s StringSlice) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	return string(b), err
}

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(src interface{}) error {
	return scanJSON(src, s)
}

// Hint is one reveal-able clue on a puzzle. Score is the point cost of
// revealing it.
type Hint struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// HintList stores a JSON-encoded []Hint in a text column.
type HintList []Hint

// Value implements driver.Valuer.
func (h HintList) Value() (driver.Value, error) {
	b, err := json.Marshal(h)
	return string(b), err
}

// Scan implements sql.Scanner.
func (h *HintList) Scan(src interface{}) error {
	return scanJSON(src, h)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into JSON column", src)
	}
}

// User is an identity record. MetaID is the external OAuth subject and is
// unique when present; it is what makes getOrCreateUser idempotent.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Handle    string    `gorm:"type:text;uniqueIndex" json:"handle"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	Avatar    string    `gorm:"type:varchar(512)" json:"avatar"`
	Platform  string    `gorm:"type:varchar(32);not null" json:"platform"`
	MetaID    *string   `gorm:"type:varchar(128);uniqueIndex" json:"meta_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Room is a single two-player match. PuzzleOrder is fixed at creation;
// CurrentPuzzleIndex points into it and only ever moves forward.
type Room struct {
	ID                 int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code               string     `gorm:"type:varchar(6);uniqueIndex;not null" json:"code"`
	HostID             int64      `gorm:"index;not null" json:"host_id"`
	GuestID            *int64     `gorm:"index" json:"guest_id,omitempty"`
	Status             string     `gorm:"type:varchar(16);not null;default:'waiting'" json:"status"`
	CurrentPuzzleIndex int        `gorm:"not null;default:0" json:"current_puzzle_index"`
	PuzzleOrder        IntSlice   `gorm:"type:text;not null" json:"puzzle_order"`
	HostScore          int        `gorm:"not null;default:0" json:"host_score"`
	GuestScore         int        `gorm:"not null;default:0" json:"guest_score"`
	RoundWinner        *string    `gorm:"type:varchar(8)" json:"round_winner,omitempty"`
	TotalRounds        int        `gorm:"not null" json:"total_rounds"`
	LastEmoji          *string    `gorm:"type:varchar(32)" json:"last_emoji,omitempty"`
	LastEmojiFrom      *string    `gorm:"type:varchar(8)" json:"last_emoji_from,omitempty"`
	LastEmojiAt        *time.Time `json:"last_emoji_at,omitempty"`
	HostGaveUp         bool       `gorm:"not null;default:false" json:"host_gave_up"`
	GuestGaveUp        bool       `gorm:"not null;default:false" json:"guest_gave_up"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Associations
	Host  *User `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Guest *User `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
}

// Round is one row per (room, puzzle pointer) pair. PuzzleIndex is copied
// from the room's puzzle order at creation time, not read through the live
// pointer. WinnerID and EndedAt are each set at most once.
type Round struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID      int64      `gorm:"index;not null" json:"room_id"`
	PuzzleIndex int        `gorm:"not null" json:"puzzle_index"`
	WinnerID    *int64     `gorm:"index" json:"winner_id,omitempty"`
	HostAnswer  *string    `gorm:"type:text" json:"host_answer,omitempty"`
	GuestAnswer *string    `gorm:"type:text" json:"guest_answer,omitempty"`
	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`

	// Associations
	Room Room `gorm:"foreignKey:RoomID" json:"-"`
}

// Puzzle is catalog content. Answer and AlternateAnswers are lower-cased
// and trimmed at write time; comparisons normalize again anyway.
type Puzzle struct {
	ID               int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ImageURL         string      `gorm:"type:varchar(512);not null" json:"image_url"`
	Answer           string      `gorm:"type:text;not null" json:"answer"`
	AlternateAnswers StringSlice `gorm:"type:text" json:"alternate_answers"`
	Difficulty       int         `gorm:"not null;default:1" json:"difficulty"`
	Category         string      `gorm:"type:varchar(64);index" json:"category"`
	Hints            HintList    `gorm:"type:text" json:"hints"`
	IsActive         bool        `gorm:"not null;default:true;index" json:"is_active"`
	PackID           *string     `gorm:"type:varchar(64);index" json:"pack_id,omitempty"`
	PackName         *string     `gorm:"type:varchar(128)" json:"pack_name,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// AutoMigrate runs the database migrations
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Room{}, &Round{}, &Puzzle{})
}
