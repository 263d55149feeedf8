package ratingstore

import "encoding/json"

// UserRecord holds the details a rater entered at login.
type UserRecord struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Rating carries the two scores for one pair, repeating the canonical asset
// identities they belong to.
type Rating struct {
	AudioA  string `json:"audioA"`
	AudioB  string `json:"audioB"`
	RatingA int    `json:"ratingA"`
	RatingB int    `json:"ratingB"`
}

// RatingRecord is one submitted rating. AudioA is the improved asset and
// AudioB the raw asset regardless of the order the rater heard them in.
type RatingRecord struct {
	UserID   string      `json:"userId"`
	UserInfo *UserRecord `json:"userInfo,omitempty"`
	AudioA   string      `json:"audioA"`
	AudioB   string      `json:"audioB"`
	Rating   Rating      `json:"rating"`
}

// Database is the whole persisted document. Ratings are append-only in
// submission order.
type Database struct {
	Users   map[string]UserRecord `json:"users"`
	Ratings []RatingRecord        `json:"ratings"`
}

// Empty returns a database with both top-level fields present.
func Empty() *Database {
	return &Database{
		Users:   map[string]UserRecord{},
		Ratings: []RatingRecord{},
	}
}

// heal fills missing top-level fields and reports whether anything changed.
func (db *Database) heal() bool {
	healed := false
	if db.Users == nil {
		db.Users = map[string]UserRecord{}
		healed = true
	}
	if db.Ratings == nil {
		db.Ratings = []RatingRecord{}
		healed = true
	}
	return healed
}

// Clone returns a deep copy of the database.
func (db *Database) Clone() *Database {
	if db == nil {
		return Empty()
	}
	out := &Database{
		Users:   make(map[string]UserRecord, len(db.Users)),
		Ratings: make([]RatingRecord, len(db.Ratings)),
	}
	for id, user := range db.Users {
		out.Users[id] = user
	}
	for i, record := range db.Ratings {
		if record.UserInfo != nil {
			info := *record.UserInfo
			record.UserInfo = &info
		}
		out.Ratings[i] = record
	}
	return out
}

func encode(db *Database) ([]byte, error) {
	if db == nil {
		db = Empty()
	}
	clone := db.Clone()
	data, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
