package domain

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// IDKind tags generated identifiers so they stay greppable in logs.
type IDKind string

const (
	KindMeeting IDKind = "mtg"
	KindUser    IDKind = "usr"
	KindMessage IDKind = "msg"
	KindFile    IDKind = "fil"
	KindEvent   IDKind = "evt"
)

// NewID returns a prefixed random identifier. Uniqueness is
// probabilistic; a duplicate overwrites silently and is treated as
// negligibly rare rather than guarded against.
func NewID(kind IDKind) string {
	return string(kind) + "-" + uuid.NewString()
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var meetingCodeRe = regexp.MustCompile(`^[A-Za-z0-9]{3}-[A-Za-z0-9]{3}-[A-Za-z0-9]{4}$`)

// NewMeetingCode returns a human-shareable code in the fixed shape
// XXX-XXX-XXXX.
func NewMeetingCode() MeetingID {
	var b strings.Builder
	for _, n := range [...]int{3, 3, 4} {
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		for i := 0; i < n; i++ {
			b.WriteByte(codeAlphabet[randomIndex(len(codeAlphabet))])
		}
	}
	return MeetingID(b.String())
}

func ValidateMeetingCode(code string) bool {
	return meetingCodeRe.MatchString(code)
}

func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return int(n.Int64())
}
