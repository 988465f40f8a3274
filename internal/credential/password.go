package credential

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher bcrypt 哈希（每条记录随机盐），可选服务端 pepper
type PasswordHasher struct {
	pepper []byte
	cost   int
}

// NewPasswordHasher 创建密码哈希器；pepper 为空时直接对明文做 bcrypt
func NewPasswordHasher(pepper string) *PasswordHasher {
	h := &PasswordHasher{cost: bcrypt.DefaultCost}
	if pepper != "" {
		h.pepper = []byte(pepper)
	}
	return h
}

// withCost 调整 bcrypt 成本（测试使用）
func (h *PasswordHasher) withCost(cost int) *PasswordHasher {
	h.cost = cost
	return h
}

// prepare pepper 作为 HMAC 密钥，输出固定 64 字节，避开 bcrypt 的 72 字节上限
func (h *PasswordHasher) prepare(plain string) []byte {
	if len(h.pepper) == 0 {
		return []byte(plain)
	}
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(plain))
	return []byte(hex.EncodeToString(mac.Sum(nil)))
}

// Hash 生成密码哈希
func (h *PasswordHasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(h.prepare(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify 校验密码，bcrypt 内部为常量时间比较
func (h *PasswordHasher) Verify(plain, hash string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), h.prepare(plain))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false
	}
	return err == nil
}

// TemporaryPassword 生成临时口令（新建用户时占位，不返回给调用方）
func TemporaryPassword() string {
	return uuid.NewString()
}
