package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hypoforum/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	AgentKeyHeader = "X-Agent-Key"
	agentKeyPrefix = "hf"
)

var errBadAgentKey = errors.New("malformed agent key")

// GenerateAgentKey returns a new key for userID and the bcrypt hash to store.
// The plain key is shown once and never stored.
func GenerateAgentKey(userID uint) (key, hash string, err error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	secret := hex.EncodeToString(buf)

	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("%s_%d_%s", agentKeyPrefix, userID, secret), string(h), nil
}

// ParseAgentKey splits hf_<userID>_<secret>.
func ParseAgentKey(key string) (uint, string, error) {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 || parts[0] != agentKeyPrefix || parts[2] == "" {
		return 0, "", errBadAgentKey
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil || id == 0 {
		return 0, "", errBadAgentKey
	}
	return uint(id), parts[2], nil
}

func authenticateAgentKey(gdb *gorm.DB, key string) (*models.User, error) {
	userID, secret, err := ParseAgentKey(key)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := gdb.Take(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("agent key user %d: %w", userID, err)
	}
	if user.AgentKeyHash == "" {
		return nil, fmt.Errorf("user %d has no agent key", userID)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.AgentKeyHash), []byte(secret)); err != nil {
		return nil, fmt.Errorf("agent key mismatch for user %d", userID)
	}
	return &user, nil
}
