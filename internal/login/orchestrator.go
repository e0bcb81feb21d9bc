// Package login orquesta el flujo OAuth2: arma el state firmado de salida,
// interpreta el callback (login anónimo, vínculo a la cuenta actual o
// handoff a otro dispositivo) y emite el par de credenciales.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/clickauth/internal/domain/account"
	"github.com/dropDatabas3/clickauth/internal/domain/repository"
	jwtx "github.com/dropDatabas3/clickauth/internal/jwt"
	"github.com/dropDatabas3/clickauth/internal/linker"
	"github.com/dropDatabas3/clickauth/internal/observability/logger"
	"github.com/dropDatabas3/clickauth/internal/providers"
	"github.com/dropDatabas3/clickauth/internal/relay"
	"github.com/dropDatabas3/clickauth/internal/security/state"
)

const (
	// EmptyState es el payload de un login anónimo.
	EmptyState = "none"
	// ExternalPrefix marca un payload de handoff: lo que sigue es la sesión.
	ExternalPrefix = "EXTERNAL_"
)

// Intent es la intención codificada en el state.
type Intent string

const (
	IntentAnonymous Intent = "anonymous"
	IntentLink      Intent = "link"
	IntentExternal  Intent = "external"
)

// Recorder recibe los resultados para métricas. Puede ser nil.
type Recorder interface {
	LoginCallback(provider, intent, result string)
	RelayClaim(result string)
}

// Deps son las dependencias del orquestador.
type Deps struct {
	Repo      repository.AccountRepository
	Providers *providers.Registry
	Signer    *state.Signer
	Issuer    *jwtx.Issuer
	Relay     relay.Relay
	Recorder  Recorder
}

type Orchestrator struct {
	deps Deps
}

func New(deps Deps) *Orchestrator {
	if deps.Recorder == nil {
		deps.Recorder = noopRecorder{}
	}
	return &Orchestrator{deps: deps}
}

// Result es el resultado exitoso de un callback.
type Result struct {
	Pair    jwtx.Pair
	Account *account.Account
	Intent  Intent
	Created bool
}

// StatePayload elige el payload según el contexto del request: la cuenta
// autenticada tiene prioridad sobre la sesión externa.
func StatePayload(currentAccountID, session string) string {
	if currentAccountID != "" {
		return currentAccountID
	}
	if session != "" {
		return ExternalPrefix + session
	}
	return EmptyState
}

// BuildState firma el payload para el parámetro state de salida.
func (o *Orchestrator) BuildState(currentAccountID, session string) string {
	return o.deps.Signer.Sign(StatePayload(currentAccountID, session))
}

// PublicData devuelve {name, authorizationUri} de un proveedor.
func (o *Orchestrator) PublicData(provider, currentAccountID, session string) (providers.PublicData, error) {
	p, ok := o.deps.Providers.Get(provider)
	if !ok {
		return providers.PublicData{}, newError(KindUnknownProvider, "no platform", nil)
	}
	return providers.Public(p, o.BuildState(currentAccountID, session)), nil
}

// AllPublicData devuelve los datos de todos los proveedores con un mismo state.
func (o *Orchestrator) AllPublicData(currentAccountID, session string) []providers.PublicData {
	st := o.BuildState(currentAccountID, session)
	all := o.deps.Providers.All()
	out := make([]providers.PublicData, 0, len(all))
	for _, p := range all {
		out = append(out, providers.Public(p, st))
	}
	return out
}

// parseState verifica el state y devuelve intención y payload.
func (o *Orchestrator) parseState(st string) (Intent, string, error) {
	if !o.deps.Signer.Verify(st) {
		return "", "", newError(KindStateForged, "state compromised", nil)
	}
	payload, err := o.deps.Signer.Decode(st)
	if err != nil {
		return "", "", newError(KindStateForged, "state compromised", err)
	}
	switch {
	case payload == EmptyState || payload == "":
		return IntentAnonymous, "", nil
	case strings.HasPrefix(payload, ExternalPrefix):
		session := strings.TrimPrefix(payload, ExternalPrefix)
		if session == "" {
			return "", "", newError(KindStateForged, "empty external session", nil)
		}
		return IntentExternal, session, nil
	default:
		return IntentLink, payload, nil
	}
}

// HandleCallback resuelve el callback del proveedor. Si falla la
// comunicación con el proveedor o la validación del perfil no se escribe
// nada (ni cuenta, ni relay).
func (o *Orchestrator) HandleCallback(ctx context.Context, provider, code, st string) (res *Result, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("login"),
		logger.Op("HandleCallback"),
		logger.Provider(provider),
	)
	intent := Intent("unknown")
	defer func() {
		result := "ok"
		if err != nil {
			if k, ok := KindOf(err); ok {
				result = string(k)
			} else {
				result = "error"
			}
		}
		o.deps.Recorder.LoginCallback(provider, string(intent), result)
	}()

	p, ok := o.deps.Providers.Get(provider)
	if !ok {
		return nil, newError(KindUnknownProvider, "no platform", nil)
	}
	if code == "" {
		return nil, newError(KindMissingParameter, "no code", nil)
	}
	if st == "" {
		return nil, newError(KindMissingParameter, "no state", nil)
	}

	intent, payload, err := o.parseState(st)
	if err != nil {
		log.Warn("state verification failed")
		return nil, err
	}
	log = log.With(logger.Intent(string(intent)))

	tok, err := p.Exchange(ctx, code)
	if err != nil {
		log.Warn("token exchange failed", logger.Err(err))
		return nil, newError(KindProviderCommunication, "failed to exchange code", err)
	}
	raw, err := p.FetchProfile(ctx, tok)
	if err != nil {
		log.Warn("profile fetch failed", logger.Err(err))
		return nil, newError(KindProviderCommunication, "failed to fetch user profile", err)
	}
	if err := p.ValidateData(raw); err != nil {
		log.Warn("profile shape rejected", logger.Err(err))
		le := newError(KindProfileShapeInvalid, "failed to validate data (probably structure was changed)", err)
		le.Raw = raw
		return nil, le
	}

	var (
		a       *account.Account
		created bool
	)
	switch intent {
	case IntentAnonymous, IntentExternal:
		a, created, err = linker.CreateOrLinkAccount(ctx, o.deps.Repo, p, raw)
		if err != nil {
			return nil, err
		}
	case IntentLink:
		a, err = o.deps.Repo.FindByID(ctx, payload)
		if repository.IsNotFound(err) {
			return nil, newError(KindAccountMissing, "account not found", err)
		}
		if err != nil {
			return nil, err
		}
		if err := linker.LinkToAccount(ctx, o.deps.Repo, p, a, raw); err != nil {
			if errors.Is(err, linker.ErrIdentityConflict) {
				log.Info("link rejected: different identity", logger.AccountID(a.ID))
				return nil, newError(KindIdentityConflict, linker.ErrIdentityConflict.Error(), err)
			}
			return nil, err
		}
	}

	pair, err := o.issue(ctx, a)
	if err != nil {
		return nil, err
	}

	if intent == IntentExternal {
		b, err := json.Marshal(pair)
		if err != nil {
			return nil, fmt.Errorf("encode pair: %w", err)
		}
		if err := o.deps.Relay.AddEntry(ctx, payload, b); err != nil {
			return nil, fmt.Errorf("relay add: %w", err)
		}
		log.Debug("credentials parked for external claim", logger.Session(payload))
	}

	log.Info("login callback ok", logger.AccountID(a.ID), logger.Bool("created", created))
	return &Result{Pair: pair, Account: a, Intent: intent, Created: created}, nil
}

// issue emite el par y guarda el refresh como el único vigente.
func (o *Orchestrator) issue(ctx context.Context, a *account.Account) (jwtx.Pair, error) {
	pair, err := o.deps.Issuer.GeneratePair(a.ID)
	if err != nil {
		return jwtx.Pair{}, fmt.Errorf("issue pair: %w", err)
	}
	a.SetRefreshToken(pair.RefreshToken)
	if err := o.deps.Repo.Save(ctx, a); err != nil {
		return jwtx.Pair{}, fmt.Errorf("save account: %w", err)
	}
	return pair, nil
}

// ClaimExternalLogin entrega (una sola vez) el par guardado para session.
func (o *Orchestrator) ClaimExternalLogin(ctx context.Context, session string) (jwtx.Pair, error) {
	if session == "" {
		return jwtx.Pair{}, newError(KindMissingParameter, "param", nil)
	}
	b, ok, err := o.deps.Relay.PopEntry(ctx, session)
	if err != nil {
		o.deps.Recorder.RelayClaim("error")
		return jwtx.Pair{}, fmt.Errorf("relay pop: %w", err)
	}
	if !ok {
		o.deps.Recorder.RelayClaim("miss")
		return jwtx.Pair{}, ErrClaimNotFound
	}
	var pair jwtx.Pair
	if err := json.Unmarshal(b, &pair); err != nil {
		o.deps.Recorder.RelayClaim("error")
		return jwtx.Pair{}, fmt.Errorf("decode pair: %w", err)
	}
	o.deps.Recorder.RelayClaim("hit")
	return pair, nil
}

type noopRecorder struct{}

func (noopRecorder) LoginCallback(string, string, string) {}
func (noopRecorder) RelayClaim(string)                    {}
