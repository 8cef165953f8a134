package repo

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"user-role-admin/internal/domain"
)

//go:embed seed/users.json
var defaultUsersJSON []byte

// LoadUserSeed 读取初始用户；path 为空时用内置数据
func LoadUserSeed(path string) ([]domain.User, error) {
	b := defaultUsersJSON
	if path != "" {
		var err error
		if b, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read seed: %w", err)
		}
	}
	var users []domain.User
	if err := json.Unmarshal(b, &users); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return users, nil
}
