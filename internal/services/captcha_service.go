package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CaptchaService 注册页的算术验证码，答案由调用方存入会话
type CaptchaService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCaptchaService() *CaptchaService {
	return NewCaptchaServiceWithSeed(time.Now().UnixNano())
}

// NewCaptchaServiceWithSeed 固定种子，测试用
func NewCaptchaServiceWithSeed(seed int64) *CaptchaService {
	return &CaptchaService{rnd: rand.New(rand.NewSource(seed))}
}

// GenerateMathProblem 返回题目（如 "3 + 5"）和答案
func (s *CaptchaService) GenerateMathProblem() (string, int) {
	s.mu.Lock()
	a := s.rnd.Intn(10)
	b := s.rnd.Intn(10)
	op := s.rnd.Intn(2)
	s.mu.Unlock()

	if op == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	// 保证结果非负
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}

// Verify 比对会话中的答案与用户输入
func (s *CaptchaService) Verify(expected interface{}, input string) error {
	answer, ok := expected.(int)
	if !ok {
		return ErrInvalidCaptcha
	}
	got, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || got != answer {
		return ErrInvalidCaptcha
	}
	return nil
}
