// Package repository define el contrato de persistencia de cuentas.
//
// Las implementaciones viven en internal/store:
//
//	┌──────────────────────────────────────┐
//	│   login / linker / auth / game       │
//	└──────────────────────────────────────┘
//	                  │
//	                  ▼
//	┌──────────────────────────────────────┐
//	│   domain/repository.AccountRepository│
//	└──────────────────────────────────────┘
//	         ┌────────┼────────┐
//	         ▼        ▼        ▼
//	     store/fs  store/pg  store/memory
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Not found se reporta con ErrNotFound
package repository
