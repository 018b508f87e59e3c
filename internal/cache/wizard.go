package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"ProNetwork/internal/wizard"
	perrors "ProNetwork/pkg/errors"
	"ProNetwork/utils"
)

const wizardPrefix = "wizard"

// WizardStore 保存注册向导状态
//
// 值是 msgpack 编码后的 State；配置了 key 时整体用 AES-GCM 加密，
// 因为 Draft 里带着明文密码。每次保存都会刷新 TTL。
type WizardStore struct {
	kv  KV
	key []byte
	ttl time.Duration
}

func NewWizardStore(kv KV, encryptionKey []byte, ttl time.Duration) *WizardStore {
	return &WizardStore{kv: kv, key: encryptionKey, ttl: ttl}
}

func wizardKey(id string) string {
	return wizardPrefix + ":" + id
}

func (s *WizardStore) Load(ctx context.Context, id string) (wizard.State, error) {
	raw, err := s.kv.Get(ctx, wizardKey(id))
	if errors.Is(err, ErrMiss) {
		return wizard.State{}, perrors.WizardNotFound
	}
	if err != nil {
		return wizard.State{}, fmt.Errorf("failed to load wizard: %w", err)
	}

	if len(s.key) > 0 {
		plain, err := utils.DecryptToken(s.key, string(raw))
		if err != nil {
			return wizard.State{}, fmt.Errorf("failed to decrypt wizard: %w", err)
		}
		raw = []byte(plain)
	}

	var st wizard.State
	if err := msgpack.Unmarshal(raw, &st); err != nil {
		return wizard.State{}, fmt.Errorf("failed to decode wizard: %w", err)
	}
	return st, nil
}

func (s *WizardStore) Save(ctx context.Context, st wizard.State) error {
	raw, err := msgpack.Marshal(&st)
	if err != nil {
		return fmt.Errorf("failed to encode wizard: %w", err)
	}

	if len(s.key) > 0 {
		sealed, err := utils.EncryptToken(s.key, string(raw))
		if err != nil {
			return fmt.Errorf("failed to encrypt wizard: %w", err)
		}
		raw = []byte(sealed)
	}

	return s.kv.Set(ctx, wizardKey(st.ID), raw, s.ttl)
}

func (s *WizardStore) Delete(ctx context.Context, id string) error {
	return s.kv.Del(ctx, wizardKey(id))
}
