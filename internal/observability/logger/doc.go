// Package logger provides a singleton Zap logger with context-based scoping.
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context scoping: cada request lleva su propio logger con request_id.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON, "test" descarta todo.
//
// Inicialización (una vez en main):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "clickauth"})
//	defer logger.Sync()
//
// En controllers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login.Callback"))
//	log.Info("account linked", logger.AccountID(id), logger.Provider("discord"))
package logger
