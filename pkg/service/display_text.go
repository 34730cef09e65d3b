package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/umputun/viteadmin/pkg/domain"
	"github.com/umputun/viteadmin/pkg/metrics"
	"github.com/umputun/viteadmin/pkg/sanitize"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . SettingStore
//go:generate moq -out mocks/tokens.go -pkg mocks -skip-ensure -fmt goimports . TokenIssuer

// defaults matching the option and nonce names used by the admin bundle
const (
	DefaultOptionName  = "vite_svelte_display_text"
	DefaultText        = "Default Text"
	DefaultNonceAction = "vite_svelte_admin_nonce"
)

// SettingStore is a key/value store for settings
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (value string, found bool, err error)
	UpdateSetting(ctx context.Context, key, value string) (changed bool, err error)
}

// TokenIssuer mints and verifies request tokens bound to a caller and an action
type TokenIssuer interface {
	Issue(subject, action string) (string, error)
	Verify(token, subject, action string) bool
}

// DisplayTextConfig defines option name, default and access rules of the display text setting
type DisplayTextConfig struct {
	OptionName  string
	DefaultText string
	Capability  domain.Capability // required to save
	NonceAction string
}

// DisplayTextService implements reading and saving of the display text setting
type DisplayTextService struct {
	store  SettingStore
	tokens TokenIssuer
	cfg    DisplayTextConfig
}

// NewDisplayTextService makes a service, empty config fields are set to defaults
func NewDisplayTextService(store SettingStore, tokens TokenIssuer, cfg DisplayTextConfig) *DisplayTextService {
	if cfg.OptionName == "" {
		cfg.OptionName = DefaultOptionName
	}
	if cfg.DefaultText == "" {
		cfg.DefaultText = DefaultText
	}
	if cfg.Capability == "" {
		cfg.Capability = domain.CapManageOptions
	}
	if cfg.NonceAction == "" {
		cfg.NonceAction = DefaultNonceAction
	}
	return &DisplayTextService{store: store, tokens: tokens, cfg: cfg}
}

// View returns the current display text, or the default if never saved, with a fresh token for the caller
func (s *DisplayTextService) View(ctx context.Context, caller domain.Caller) (domain.SettingView, error) {
	if caller.Anonymous() {
		return domain.SettingView{}, fmt.Errorf("%w: anonymous caller", domain.ErrForbidden)
	}

	value, err := s.current(ctx)
	if err != nil {
		return domain.SettingView{}, err
	}

	token, err := s.tokens.Issue(caller.Login, s.cfg.NonceAction)
	if err != nil {
		return domain.SettingView{}, fmt.Errorf("issue token for %s: %w", caller.Login, err)
	}
	return domain.SettingView{Value: value, Token: token}, nil
}

// Save checks the token, then the caller's capability, then presence of the value.
// The value is sanitized and stored. Storing a value equal to the current one is a success.
func (s *DisplayTextService) Save(ctx context.Context, caller domain.Caller, req domain.SaveRequest) (domain.Ack, error) {
	ack, err := s.save(ctx, caller, req)
	metrics.DisplayTextSaves.WithLabelValues(saveResult(ack, err)).Inc()
	return ack, err
}

func (s *DisplayTextService) save(ctx context.Context, caller domain.Caller, req domain.SaveRequest) (domain.Ack, error) {
	if !s.tokens.Verify(req.Nonce, caller.Login, s.cfg.NonceAction) {
		return domain.Ack{}, domain.ErrUnauthorized
	}

	if !caller.Can(s.cfg.Capability) {
		return domain.Ack{}, fmt.Errorf("%w: %q lacks %s", domain.ErrForbidden, caller.Login, s.cfg.Capability)
	}

	if req.DisplayText == nil {
		return domain.Ack{}, domain.ErrBadRequest
	}

	clean := sanitize.Text(*req.DisplayText)

	changed, err := s.store.UpdateSetting(ctx, s.cfg.OptionName, clean)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("%w: %w", domain.ErrInternal, err)
	}
	if changed {
		log.Printf("[DEBUG] display text updated by %s", caller.Login)
		return domain.Ack{Status: domain.AckSaved, Message: "Display text saved successfully."}, nil
	}

	// store reported no change, it is fine only if the stored value is what we tried to write
	current, found, err := s.store.GetSetting(ctx, s.cfg.OptionName)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("%w: read back: %w", domain.ErrInternal, err)
	}
	if !found || current != clean {
		return domain.Ack{}, fmt.Errorf("%w: store kept a different value", domain.ErrInternal)
	}
	return domain.Ack{Status: domain.AckAlreadySet, Message: "Display text is already set to this value."}, nil
}

// current returns stored value or default
func (s *DisplayTextService) current(ctx context.Context) (string, error) {
	value, found, err := s.store.GetSetting(ctx, s.cfg.OptionName)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", s.cfg.OptionName, err)
	}
	if !found {
		return s.cfg.DefaultText, nil
	}
	return value, nil
}

func saveResult(ack domain.Ack, err error) string {
	switch {
	case err == nil:
		return string(ack.Status)
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrBadRequest):
		return "bad_request"
	default:
		return "error"
	}
}
