package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
	"strings"
)

const (
	PinLength   = 5
	PinAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RandPin 生成 5 位大写字母+数字的社区 PIN
func RandPin() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(PinAlphabet)))
	for i := 0; i < PinLength; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(PinAlphabet[x.Int64()])
	}
	return b.String(), nil
}

// NormalizePin 语音识别出的 PIN 可能带空格或小写
func NormalizePin(pin string) string {
	return strings.ToUpper(strings.Join(strings.Fields(pin), ""))
}

// ValidPin 校验 PIN 格式
func ValidPin(pin string) bool {
	if len(pin) != PinLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if !strings.ContainsRune(PinAlphabet, rune(pin[i])) {
			return false
		}
	}
	return true
}
