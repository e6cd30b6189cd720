package common

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/bcrypt"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// UUIDint64 returns a cluster-unique int64 identifier.
func UUIDint64() int64 {
	snowflakeOnce.Do(func() {
		var err error
		snowflakeNode, err = snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
	})
	return snowflakeNode.Generate().Int64()
}

// UUID returns the string form of a snowflake identifier.
func UUID() string {
	return fmt.Sprintf("%d", UUIDint64())
}

// GetSecretSalt returns the instance salt, overridable via environment.
func GetSecretSalt() string {
	if v := strings.TrimSpace(os.Getenv("AGROPORTAL_SECRET")); v != "" {
		return v
	}
	return "agroportal-secret"
}

// Sha256HashWithSalt hashes src with the given salt.
func Sha256HashWithSalt(src, salt string) string {
	h := sha256.New()
	h.Write([]byte(src + salt))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// BcryptHash hashes a password for operator accounts.
func BcryptHash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// BcryptCheck reports whether password matches the stored hash.
func BcryptCheck(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
