package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field evita que los paquetes de la app importen zap solo para armar slices de campos.
type Field = zap.Field

// ---- HTTP ----

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field       { return zap.String("user_agent", v) }

// ---- Negocio ----

// AccountID crea un campo para el ID de la cuenta.
func AccountID(v string) zap.Field { return zap.String("account_id", v) }

// Provider crea un campo para el proveedor de identidad (discord, google).
func Provider(v string) zap.Field { return zap.String("provider", v) }

// Intent crea un campo para la intención del state (anonymous, link, external).
func Intent(v string) zap.Field { return zap.String("intent", v) }

// Session registra solo un prefijo de la clave de relay; la clave completa es un secreto.
func Session(v string) zap.Field {
	if len(v) > 6 {
		v = v[:6] + "…"
	}
	return zap.String("session", v)
}

// ---- Sistema ----

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }

// Layer crea un campo para la capa (controller, service, store).
func Layer(v string) zap.Field { return zap.String("layer", v) }
func Err(err error) zap.Field  { return zap.Error(err) }

// ---- Genéricos ----

func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
