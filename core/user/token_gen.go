package user

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PeaceIshola/eduhub/core"
)

var (
	tokenSalt = []byte("eduhub.core.user.token_gen")
	NowFunc   = time.Now // mockable

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// EncodeUID base64 encodes given User ID
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

// DecodeUID base64 decodes given UID
func DecodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(idBytes), nil
}

// MakeToken generates a password reset token for a given User.
// The token is invalidated by use (the hash embeds the password hash and last
// login) and by expiry (core.Conf.PasswordResetTimeoutDelta).
func MakeToken(usr User) (string, error) {
	return makeTokenWithTimestamp(usr, NowFunc().UTC().Unix())
}

// VerifyToken checks that a password reset token for a given User is valid.
func VerifyToken(usr User, token string) error {
	if token == "" {
		return errInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return errInvalidToken
	}
	ts, err := strconv.ParseInt(parts[0], 36, 64)
	if err != nil {
		return errInvalidToken
	}

	// check that the timestamp has not been tampered with
	expected, err := makeTokenWithTimestamp(usr, ts)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(token)) != 1 {
		return errInvalidToken
	}

	// check expiry
	if NowFunc().UTC().Sub(time.Unix(ts, 0).UTC()) > core.Conf.PasswordResetTimeoutDelta {
		return errTokenExpired
	}
	return nil
}

func makeTokenWithTimestamp(usr User, ts int64) (string, error) {
	mac := hmac.New(sha256.New, append(tokenSalt, []byte(core.Conf.SecretKey)...))
	if _, err := mac.Write([]byte(hashValue(usr, ts))); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", strconv.FormatInt(ts, 36), hex.EncodeToString(mac.Sum(nil))[:32]), nil
}

// hashValue embeds state that changes on password reset or login so that a
// token can only be used once.
func hashValue(usr User, ts int64) string {
	return usr.ID + string(usr.PasswordHash) + usr.LastLogin.UTC().Format(time.RFC3339) + strconv.FormatInt(ts, 10)
}
