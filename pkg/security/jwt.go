package security

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lk2023060901/coinbot/pkg/config"
)

// JWTConfig JWT 配置
// 网关（聊天平台适配层）用同一密钥为每条命令签发短期 token
type JWTConfig struct {
	// 签名密钥（HS 系列算法）
	SecretKey string `mapstructure:"secret_key" json:"secret_key"`

	// 公钥/私钥文件路径（RS 系列算法）
	PublicKeyFile  string `mapstructure:"public_key_file" json:"public_key_file"`
	PrivateKeyFile string `mapstructure:"private_key_file" json:"private_key_file"`

	// 签名算法（默认 HS256），支持 HS256/HS384/HS512/RS256/RS384/RS512
	Algorithm string `mapstructure:"algorithm" json:"algorithm"`

	// Token 过期时间（默认 5 分钟）
	ExpiresIn time.Duration `mapstructure:"expires_in" json:"expires_in"`

	Issuer string `mapstructure:"issuer" json:"issuer"`

	// Token 前缀（默认 "Bearer "）
	TokenPrefix string `mapstructure:"token_prefix" json:"token_prefix"`

	// Header 名称（默认 "Authorization"）
	HeaderName string `mapstructure:"header_name" json:"header_name"`
}

// DefaultJWTConfig 返回默认 JWT 配置
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		Algorithm:   "HS256",
		ExpiresIn:   5 * time.Minute,
		Issuer:      "coinbot-gateway",
		TokenPrefix: "Bearer ",
		HeaderName:  "Authorization",
	}
}

// Claims JWT Claims，业务字段放在 Payload 中
type Claims struct {
	jwt.RegisteredClaims

	Payload map[string]any `json:"payload,omitempty"`
}

// JWTManager JWT 管理器
type JWTManager struct {
	config     *JWTConfig
	method     jwt.SigningMethod
	publicKey  any
	privateKey any
}

// NewJWTManager 创建 JWT 管理器
func NewJWTManager(cfg *JWTConfig) (*JWTManager, error) {
	newCfg, err := config.MergeConfig(DefaultJWTConfig(), cfg)
	if err != nil {
		return nil, err
	}

	m := &JWTManager{config: newCfg}
	if m.method = signingMethod(newCfg.Algorithm); m.method == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlgorithmInvalid, newCfg.Algorithm)
	}
	if err := m.loadKeys(); err != nil {
		return nil, err
	}
	return m, nil
}

func signingMethod(alg string) jwt.SigningMethod {
	switch strings.ToUpper(alg) {
	case "HS256":
		return jwt.SigningMethodHS256
	case "HS384":
		return jwt.SigningMethodHS384
	case "HS512":
		return jwt.SigningMethodHS512
	case "RS256":
		return jwt.SigningMethodRS256
	case "RS384":
		return jwt.SigningMethodRS384
	case "RS512":
		return jwt.SigningMethodRS512
	default:
		return nil
	}
}

func (m *JWTManager) isHMAC() bool {
	return strings.HasPrefix(m.method.Alg(), "HS")
}

func (m *JWTManager) loadKeys() error {
	if m.isHMAC() {
		if m.config.SecretKey == "" {
			return ErrSecretKeyEmpty
		}
		return nil
	}

	if m.config.PublicKeyFile != "" {
		data, err := os.ReadFile(m.config.PublicKeyFile)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPublicKeyLoad, err)
		}
		if m.publicKey, err = jwt.ParseRSAPublicKeyFromPEM(data); err != nil {
			return fmt.Errorf("%w: %v", ErrPublicKeyLoad, err)
		}
	}
	if m.config.PrivateKeyFile != "" {
		data, err := os.ReadFile(m.config.PrivateKeyFile)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPrivateKeyLoad, err)
		}
		if m.privateKey, err = jwt.ParseRSAPrivateKeyFromPEM(data); err != nil {
			return fmt.Errorf("%w: %v", ErrPrivateKeyLoad, err)
		}
	}
	return nil
}

// GenerateToken 生成 Token，未设置过期时间时使用配置值
func (m *JWTManager) GenerateToken(claims *Claims) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.config.ExpiresIn))
	}
	if claims.Issuer == "" {
		claims.Issuer = m.config.Issuer
	}

	token := jwt.NewWithClaims(m.method, claims)
	if m.isHMAC() {
		return token.SignedString([]byte(m.config.SecretKey))
	}
	return token.SignedString(m.privateKey)
}

// ValidateToken 验证 Token（可带前缀）
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, m.config.TokenPrefix)

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != m.method.Alg() {
			return nil, ErrAlgorithmMismatch
		}
		if m.isHMAC() {
			return []byte(m.config.SecretKey), nil
		}
		return m.publicKey, nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// GetConfig 获取配置
func (m *JWTManager) GetConfig() *JWTConfig {
	return m.config
}

func wrapError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotValidYet
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, ErrAlgorithmMismatch):
		return ErrAlgorithmMismatch
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}

// Get 获取指定 key 的值（支持点号分隔的嵌套 key）
func (c *Claims) Get(key string) any {
	var current any = c.Payload
	for _, k := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[k]
	}
	return current
}
