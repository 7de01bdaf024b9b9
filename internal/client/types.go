// Package client provides the HTTP gateway to the yoga booking service.
// Types mirror the service's JSON wire format.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SessionInformation is the identity record returned by a successful login.
type SessionInformation struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Admin     bool   `json:"admin"`
}

// Valid reports whether the record is fully populated.
func (s SessionInformation) Valid() bool {
	return s.Token != "" && s.ID != 0 && s.Username != ""
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// Session is a bookable class.
type Session struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Date        Date    `json:"date"`
	TeacherID   int64   `json:"teacher_id"`
	Users       []int64 `json:"users"`
	CreatedAt   *Date   `json:"createdAt,omitempty"`
	UpdatedAt   *Date   `json:"updatedAt,omitempty"`
}

// HasParticipant reports whether userID is in the participant list.
func (s *Session) HasParticipant(userID int64) bool {
	for _, id := range s.Users {
		if id == userID {
			return true
		}
	}
	return false
}

// normalize drops repeated participant ids, keeping first-seen order.
func (s *Session) normalize() {
	if len(s.Users) < 2 {
		return
	}
	seen := make(map[int64]struct{}, len(s.Users))
	out := s.Users[:0]
	for _, id := range s.Users {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	s.Users = out
}

// SessionFields are the editable fields of a session.
type SessionFields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        Date   `json:"date"`
	TeacherID   int64  `json:"teacher_id"`
}

// Teacher runs sessions.
type Teacher struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	CreatedAt *Date  `json:"createdAt,omitempty"`
	UpdatedAt *Date  `json:"updatedAt,omitempty"`
}

// FullName returns "First LAST", the way the service's web client shows teachers.
func (t Teacher) FullName() string {
	return t.FirstName + " " + strings.ToUpper(t.LastName)
}

// User is an account profile.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Admin     bool   `json:"admin"`
	CreatedAt *Date  `json:"createdAt,omitempty"`
	UpdatedAt *Date  `json:"updatedAt,omitempty"`
}

// Date is a timestamp that decodes both plain dates and RFC 3339 values.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NewDate wraps t.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// ParseDate parses s using any of the accepted layouts.
func ParseDate(s string) (Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}

// Long renders the date as "January 2, 2006".
func (d Date) Long() string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("January 2, 2006")
}
