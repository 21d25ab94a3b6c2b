package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ifo/sanic"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"moul.io/zapgorm2"

	rbl "github.com/ilank-pro/RBL"
)

var (
	dbOnce sync.Once
	dbConn *gorm.DB
	dbErr  error
)

func getDB() (*gorm.DB, error) {
	dbOnce.Do(func() {
		if opts.DatabaseURL == "" {
			dbErr = fmt.Errorf("database URL is empty")
			return
		}

		gormLogger := zapgorm2.New(log.Desugar())
		gormLogger.SetAsDefault()

		db, err := gorm.Open(postgres.Open(opts.DatabaseURL), &gorm.Config{
			Logger: gormLogger,
		})
		if err != nil {
			dbErr = err
			return
		}

		if err := AutoMigrate(db); err != nil {
			dbErr = fmt.Errorf("failed to run auto-migration: %v", err)
			return
		}

		dbConn = db
	})

	return dbConn, dbErr
}

// createUser inserts a new identity record. Handle is an opaque public
// identifier, distinct from the numeric primary key.
func createUser(db *gorm.DB, name, avatar string, platform rbl.Platform, metaID *string) (*User, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("unknown platform %q", platform)
	}

	worker := sanic.NewWorker7()
	user := User{
		Handle:   worker.IDString(worker.NextID()),
		Name:     name,
		Avatar:   avatar,
		Platform: string(platform),
		MetaID:   metaID,
	}

	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// getOrCreateUser upserts a user by their external OAuth subject. Repeat
// logins refresh name, avatar and platform in case they changed upstream.
func getOrCreateUser(db *gorm.DB, metaID, name, avatar string, platform rbl.Platform) (*User, error) {
	if metaID == "" {
		return nil, fmt.Errorf("metaID is required")
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("unknown platform %q", platform)
	}

	var user User
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("meta_id = ?", metaID).First(&user).Error
		if err == nil {
			return tx.Model(&user).Updates(map[string]interface{}{
				"name":     name,
				"avatar":   avatar,
				"platform": string(platform),
			}).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		worker := sanic.NewWorker7()
		user = User{
			Handle:   worker.IDString(worker.NextID()),
			Name:     name,
			Avatar:   avatar,
			Platform: string(platform),
			MetaID:   &metaID,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func getUser(db *gorm.DB, id int64) (*User, error) {
	var user User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// createRoom creates a waiting room with a unique join code and a puzzle
// order fixed for the lifetime of the room. Code generation retries until
// it finds a free code; with a 32^6 keyspace the expected retry count is
// effectively zero.
func createRoom(db *gorm.DB, hostID int64, totalRounds, totalPuzzles int) (*Room, error) {
	order, err := rbl.NewPuzzleOrder(totalPuzzles, totalRounds)
	if err != nil {
		return nil, err
	}

	var room Room
	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := getUser(tx, hostID); err != nil {
			return err
		}

		code := rbl.NewCode()
		for {
			var count int64
			if err := tx.Model(&Room{}).Where("code = ?", code).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				break
			}
			code = rbl.NewCode()
		}

		room = Room{
			Code:        code,
			HostID:      hostID,
			Status:      string(rbl.StatusWaiting),
			PuzzleOrder: order,
			TotalRounds: totalRounds,
		}
		return tx.Create(&room).Error
	})
	if err != nil {
		return nil, err
	}

	roomsCreated.Inc()
	return &room, nil
}

// joinRoom attaches a guest to a waiting room by its join code. The seat
// assignment is a guarded update so two near-simultaneous joins cannot
// both take the seat.
func joinRoom(db *gorm.DB, code string, guestID int64) (*Room, error) {
	code = rbl.NormalizeCode(code)

	var room Room
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := getUser(tx, guestID); err != nil {
			return err
		}

		if err := tx.Where("code = ?", code).First(&room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		if room.Status != string(rbl.StatusWaiting) {
			return ErrAlreadyStarted
		}
		if room.GuestID != nil {
			return ErrRoomFull
		}

		res := tx.Model(&Room{}).
			Where("id = ? AND guest_id IS NULL AND status = ?", room.ID, string(rbl.StatusWaiting)).
			Update("guest_id", guestID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRoomFull
		}

		room.GuestID = &guestID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &room, nil
}

// startGame moves a room from waiting to playing and creates the first
// round. This is the sole creator of round zero.
func startGame(db *gorm.DB, roomID int64) (*Room, error) {
	var room Room
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		if room.GuestID == nil {
			return ErrNoGuest
		}
		if room.Status != string(rbl.StatusWaiting) {
			return ErrAlreadyStarted
		}

		if err := tx.Model(&room).Updates(map[string]interface{}{
			"status":               string(rbl.StatusPlaying),
			"current_puzzle_index": 0,
		}).Error; err != nil {
			return err
		}
		room.Status = string(rbl.StatusPlaying)
		room.CurrentPuzzleIndex = 0

		round := Round{
			RoomID:      room.ID,
			PuzzleIndex: room.PuzzleOrder[0],
			StartedAt:   time.Now(),
		}
		return tx.Create(&round).Error
	})
	if err != nil {
		return nil, err
	}

	return &room, nil
}

// currentRound resolves the round for the room's live pointer. The lookup
// goes through the puzzle-catalog index copied into the round at creation,
// mirroring how rounds are keyed.
func currentRound(tx *gorm.DB, room *Room) (*Round, error) {
	if room.CurrentPuzzleIndex < 0 || room.CurrentPuzzleIndex >= len(room.PuzzleOrder) {
		return nil, ErrRoundNotFound
	}

	var round Round
	err := tx.Where("room_id = ? AND puzzle_index = ?", room.ID, room.PuzzleOrder[room.CurrentPuzzleIndex]).
		Order("id DESC").First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return &round, nil
}

func answerColumn(isHost bool) string {
	if isHost {
		return "host_answer"
	}
	return "guest_answer"
}

// submitAnswer records the raw submitted text on the current round. This
// is a transcript field only; correctness is judged by checkAnswer.
func submitAnswer(db *gorm.DB, roomID, playerID int64, answer string, isHost bool) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var room Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		if room.Status != string(rbl.StatusPlaying) {
			return ErrNotPlaying
		}

		round, err := currentRound(tx, &room)
		if err != nil {
			return err
		}
		if round.WinnerID != nil {
			return ErrRoundAlreadyWon
		}

		return tx.Model(round).Update(answerColumn(isHost), answer).Error
	})
}

// CheckResult is the outcome of a checkAnswer call.
type CheckResult struct {
	Correct    bool `json:"correct"`
	WonRound   bool `json:"won_round"`
	AlreadyWon bool `json:"already_won,omitempty"`
}

// checkAnswer judges a submission against the accepted answers and, on a
// first correct answer, awards the round. The winner write is a guarded
// update on winner_id IS NULL, so of two racing correct submissions
// exactly one wins the round and bumps a score; the other observes
// AlreadyWon. A wrong answer changes nothing and can be retried freely.
func checkAnswer(db *gorm.DB, roomID, playerID int64, answer string, isHost bool, acceptedAnswers []string) (*CheckResult, error) {
	var result CheckResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var room Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		if room.Status != string(rbl.StatusPlaying) {
			return ErrNotPlaying
		}

		if !rbl.AnswerMatches(answer, acceptedAnswers) {
			result = CheckResult{Correct: false, WonRound: false}
			return nil
		}

		round, err := currentRound(tx, &room)
		if err != nil {
			return err
		}

		if round.WinnerID != nil {
			result = CheckResult{Correct: true, WonRound: false, AlreadyWon: true}
			return nil
		}

		now := time.Now()
		res := tx.Model(&Round{}).
			Where("id = ? AND winner_id IS NULL", round.ID).
			Updates(map[string]interface{}{
				"winner_id":          playerID,
				"ended_at":           now,
				answerColumn(isHost): answer,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			result = CheckResult{Correct: true, WonRound: false, AlreadyWon: true}
			return nil
		}

		scoreUpdate := map[string]interface{}{
			"guest_score":  gorm.Expr("guest_score + 1"),
			"round_winner": string(rbl.RoleGuest),
		}
		if isHost {
			scoreUpdate = map[string]interface{}{
				"host_score":   gorm.Expr("host_score + 1"),
				"round_winner": string(rbl.RoleHost),
			}
		}
		if err := tx.Model(&Room{}).Where("id = ?", room.ID).Updates(scoreUpdate).Error; err != nil {
			return err
		}

		result = CheckResult{Correct: true, WonRound: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.WonRound {
		roundsWon.Inc()
	}
	return &result, nil
}

// AdvanceResult is the outcome of a round advancement. NextPuzzleIndex is
// the catalog index of the new round and is absent when the game ended.
type AdvanceResult struct {
	GameOver        bool `json:"game_over"`
	NextPuzzleIndex *int `json:"next_puzzle_index,omitempty"`
}

// advance moves the room to its next round or finishes the game. Round
// winner and give-up flags are cleared on every path. When the game ends
// the pointer is left on the final round so projections stay in range;
// advancing a finished room just re-finishes it.
func advance(tx *gorm.DB, room *Room) (*AdvanceResult, error) {
	next := room.CurrentPuzzleIndex + 1

	if next >= room.TotalRounds {
		alreadyFinished := room.Status == string(rbl.StatusFinished)
		err := tx.Model(room).Updates(map[string]interface{}{
			"status":        string(rbl.StatusFinished),
			"round_winner":  nil,
			"host_gave_up":  false,
			"guest_gave_up": false,
		}).Error
		if err != nil {
			return nil, err
		}
		if !alreadyFinished {
			gamesFinished.Inc()
		}
		return &AdvanceResult{GameOver: true}, nil
	}

	err := tx.Model(room).Updates(map[string]interface{}{
		"current_puzzle_index": next,
		"round_winner":         nil,
		"host_gave_up":         false,
		"guest_gave_up":        false,
	}).Error
	if err != nil {
		return nil, err
	}

	round := Round{
		RoomID:      room.ID,
		PuzzleIndex: room.PuzzleOrder[next],
		StartedAt:   time.Now(),
	}
	if err := tx.Create(&round).Error; err != nil {
		return nil, err
	}

	idx := room.PuzzleOrder[next]
	return &AdvanceResult{GameOver: false, NextPuzzleIndex: &idx}, nil
}

// nextRound advances after an observed round win. The host client is the
// sole caller and invokes it exactly once per win.
func nextRound(db *gorm.DB, roomID int64) (*AdvanceResult, error) {
	var result *AdvanceResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var room Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		var err error
		result, err = advance(tx, &room)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// skipRound ends the current round without a winner (round timer elapsed)
// and advances. Ending an already-ended round is a no-op, so a duplicate
// skip does not rewrite ended_at.
func skipRound(db *gorm.DB, roomID int64) (*AdvanceResult, error) {
	var result *AdvanceResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var room Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		round, err := currentRound(tx, &room)
		if err != nil && !errors.Is(err, ErrRoundNotFound) {
			return err
		}
		if round != nil && round.EndedAt == nil {
			if err := tx.Model(round).Update("ended_at", time.Now()).Error; err != nil {
				return err
			}
		}

		result, err = advance(tx, &room)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GiveUpResult is the outcome of a giveUp call.
type GiveUpResult struct {
	GaveUp     bool `json:"gave_up"`
	BothGaveUp bool `json:"both_gave_up"`
	GameOver   bool `json:"game_over"`
}

// giveUp marks the calling player as having given up on the current
// round. Once both players have given up the round ends with no winner
// and the room advances; a lone give-up just surfaces the flag.
func giveUp(db *gorm.DB, roomID int64, isHost bool) (*GiveUpResult, error) {
	var result GiveUpResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var room Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		if room.Status != string(rbl.StatusPlaying) {
			return ErrNotPlaying
		}

		column := "guest_gave_up"
		if isHost {
			column = "host_gave_up"
		}
		if err := tx.Model(&room).Update(column, true).Error; err != nil {
			return err
		}

		// The flag write serializes racing give-ups on the row lock.
		// Re-read before deciding so the other seat's flag, committed
		// after our first read, is visible: of two racing give-ups
		// exactly the later one sees both flags and advances.
		var fresh Room
		if err := tx.First(&fresh, room.ID).Error; err != nil {
			return err
		}

		if !(fresh.HostGaveUp && fresh.GuestGaveUp) {
			result = GiveUpResult{GaveUp: true, BothGaveUp: false, GameOver: false}
			return nil
		}

		round, err := currentRound(tx, &fresh)
		if err != nil && !errors.Is(err, ErrRoundNotFound) {
			return err
		}
		if round != nil && round.EndedAt == nil {
			if err := tx.Model(round).Update("ended_at", time.Now()).Error; err != nil {
				return err
			}
		}

		adv, err := advance(tx, &fresh)
		if err != nil {
			return err
		}
		result = GiveUpResult{GaveUp: true, BothGaveUp: true, GameOver: adv.GameOver}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// sendEmoji stamps the room's ephemeral emoji fields. Last write wins;
// there is no queue of reactions.
func sendEmoji(db *gorm.DB, roomID int64, emoji string, isHost bool) error {
	if emoji == "" {
		return fmt.Errorf("emoji is required")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var room Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		return tx.Model(&room).Updates(map[string]interface{}{
			"last_emoji":      emoji,
			"last_emoji_from": string(rbl.RoleFor(isHost)),
			"last_emoji_at":   time.Now(),
		}).Error
	})
}

// clearEmoji resets the emoji fields after the client display timeout.
func clearEmoji(db *gorm.DB, roomID int64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var room Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}

		return tx.Model(&room).Updates(map[string]interface{}{
			"last_emoji":      nil,
			"last_emoji_from": nil,
			"last_emoji_at":   nil,
		}).Error
	})
}

// PlayerState is the slice of a user profile embedded in a game state
// projection.
type PlayerState struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// GameState is the composite projection pushed to subscribed clients and
// served from the state endpoint. CurrentRound is 1-based for display;
// CurrentPuzzleIndex is the catalog index resolved through the room's
// puzzle order.
type GameState struct {
	RoomID             int64        `json:"room_id"`
	Status             string       `json:"status"`
	CurrentRound       int          `json:"current_round"`
	TotalRounds        int          `json:"total_rounds"`
	CurrentPuzzleIndex int          `json:"current_puzzle_index"`
	HostScore          int          `json:"host_score"`
	GuestScore         int          `json:"guest_score"`
	RoundWinner        *string      `json:"round_winner"`
	Host               *PlayerState `json:"host"`
	Guest              *PlayerState `json:"guest"`
	LastEmoji          *string      `json:"last_emoji"`
	LastEmojiFrom      *string      `json:"last_emoji_from"`
	LastEmojiAt        *time.Time   `json:"last_emoji_at"`
	HostGaveUp         bool         `json:"host_gave_up"`
	GuestGaveUp        bool         `json:"guest_gave_up"`
}

func playerState(u *User) *PlayerState {
	if u == nil {
		return nil
	}
	return &PlayerState{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

// getGameState builds the composite projection for a room, or nil if the
// room does not exist. Callers must treat nil as "not found", distinct
// from an in-progress load.
func getGameState(db *gorm.DB, roomID int64) (*GameState, error) {
	var room Room
	if err := db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var host User
	if err := db.First(&host, room.HostID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var guest *User
	if room.GuestID != nil {
		var g User
		if err := db.First(&g, *room.GuestID).Error; err == nil {
			guest = &g
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	catalogIndex := 0
	if room.CurrentPuzzleIndex >= 0 && room.CurrentPuzzleIndex < len(room.PuzzleOrder) {
		catalogIndex = room.PuzzleOrder[room.CurrentPuzzleIndex]
	}

	return &GameState{
		RoomID:             room.ID,
		Status:             room.Status,
		CurrentRound:       room.CurrentPuzzleIndex + 1,
		TotalRounds:        room.TotalRounds,
		CurrentPuzzleIndex: catalogIndex,
		HostScore:          room.HostScore,
		GuestScore:         room.GuestScore,
		RoundWinner:        room.RoundWinner,
		Host:               playerState(&host),
		Guest:              playerState(guest),
		LastEmoji:          room.LastEmoji,
		LastEmojiFrom:      room.LastEmojiFrom,
		LastEmojiAt:        room.LastEmojiAt,
		HostGaveUp:         room.HostGaveUp,
		GuestGaveUp:        room.GuestGaveUp,
	}, nil
}

// getRoom returns a room with its host and guest profiles embedded, or
// nil if the id does not resolve.
func getRoom(db *gorm.DB, roomID int64) (*Room, error) {
	var room Room
	err := db.Preload("Host").Preload("Guest").First(&room, roomID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

// getRoomByCode returns the bare room for a join code, or nil on miss.
func getRoomByCode(db *gorm.DB, code string) (*Room, error) {
	var room Room
	err := db.Where("code = ?", rbl.NormalizeCode(code)).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

// normalizeCatalogAnswer is the write-time normalization for catalog
// answers: lower-cased and trimmed, with internal spacing preserved for
// display. Comparison-time normalization strips spacing on both sides.
func normalizeCatalogAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validatePuzzle(p *Puzzle) error {
	if p.ImageURL == "" {
		return fmt.Errorf("image URL is required")
	}
	if strings.TrimSpace(p.Answer) == "" {
		return fmt.Errorf("answer is required")
	}
	if p.Difficulty < 1 || p.Difficulty > 5 {
		return fmt.Errorf("difficulty must be between 1 and 5, got %d", p.Difficulty)
	}
	return nil
}

// createPuzzle inserts one catalog record, normalizing its answers.
func createPuzzle(db *gorm.DB, p *Puzzle) error {
	if err := validatePuzzle(p); err != nil {
		return err
	}

	p.Answer = normalizeCatalogAnswer(p.Answer)
	for i, alt := range p.AlternateAnswers {
		p.AlternateAnswers[i] = normalizeCatalogAnswer(alt)
	}
	p.IsActive = true

	return db.Create(p).Error
}

// createPuzzles bulk-inserts catalog records in one transaction; either
// the whole batch lands or none of it does.
func createPuzzles(db *gorm.DB, puzzles []*Puzzle) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, p := range puzzles {
			if err := createPuzzle(tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// PuzzleUpdate carries the optional fields of an updatePuzzle call. Nil
// fields are left untouched.
type PuzzleUpdate struct {
	ImageURL         *string      `json:"image_url"`
	Answer           *string      `json:"answer"`
	AlternateAnswers *StringSlice `json:"alternate_answers"`
	Difficulty       *int         `json:"difficulty"`
	Category         *string      `json:"category"`
	Hints            *HintList    `json:"hints"`
	IsActive         *bool        `json:"is_active"`
	PackID           *string      `json:"pack_id"`
	PackName         *string      `json:"pack_name"`
}

// updatePuzzle applies the provided fields to an existing puzzle.
func updatePuzzle(db *gorm.DB, id int64, upd *PuzzleUpdate) (*Puzzle, error) {
	var puzzle Puzzle
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&puzzle, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("puzzle %d not found", id)
			}
			return err
		}

		updates := map[string]interface{}{}
		if upd.ImageURL != nil {
			updates["image_url"] = *upd.ImageURL
		}
		if upd.Answer != nil {
			updates["answer"] = normalizeCatalogAnswer(*upd.Answer)
		}
		if upd.AlternateAnswers != nil {
			alts := make(StringSlice, len(*upd.AlternateAnswers))
			for i, alt := range *upd.AlternateAnswers {
				alts[i] = normalizeCatalogAnswer(alt)
			}
			updates["alternate_answers"] = alts
		}
		if upd.Difficulty != nil {
			if *upd.Difficulty < 1 || *upd.Difficulty > 5 {
				return fmt.Errorf("difficulty must be between 1 and 5, got %d", *upd.Difficulty)
			}
			updates["difficulty"] = *upd.Difficulty
		}
		if upd.Category != nil {
			updates["category"] = *upd.Category
		}
		if upd.Hints != nil {
			updates["hints"] = *upd.Hints
		}
		if upd.IsActive != nil {
			updates["is_active"] = *upd.IsActive
		}
		if upd.PackID != nil {
			updates["pack_id"] = *upd.PackID
		}
		if upd.PackName != nil {
			updates["pack_name"] = *upd.PackName
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&puzzle).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&puzzle, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &puzzle, nil
}

func deletePuzzle(db *gorm.DB, id int64) error {
	res := db.Delete(&Puzzle{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("puzzle %d not found", id)
	}
	return nil
}

// togglePuzzleActive flips the active flag and returns the new value.
func togglePuzzleActive(db *gorm.DB, id int64) (bool, error) {
	var active bool
	err := db.Transaction(func(tx *gorm.DB) error {
		var puzzle Puzzle
		if err := tx.First(&puzzle, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("puzzle %d not found", id)
			}
			return err
		}

		active = !puzzle.IsActive
		return tx.Model(&puzzle).Update("is_active", active).Error
	})
	return active, err
}

// PuzzleFilter narrows a catalog listing. Zero values mean no filter.
type PuzzleFilter struct {
	Category   string
	Difficulty int
	ActiveOnly bool
}

func listPuzzles(db *gorm.DB, filter PuzzleFilter) ([]Puzzle, error) {
	q := db.Model(&Puzzle{})
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != 0 {
		q = q.Where("difficulty = ?", filter.Difficulty)
	}

	var puzzles []Puzzle
	if err := q.Order("id").Find(&puzzles).Error; err != nil {
		return nil, err
	}
	return puzzles, nil
}

func getPuzzle(db *gorm.DB, id int64) (*Puzzle, error) {
	var puzzle Puzzle
	if err := db.First(&puzzle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &puzzle, nil
}

func countPuzzles(db *gorm.DB, activeOnly bool) (int64, error) {
	q := db.Model(&Puzzle{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}
