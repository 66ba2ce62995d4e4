// Package auth protects the catalog's web surface.
//
// Reads are public. Mutations (POST /books and POST /api/...) are open when
// AUTH_MODE=none and require the librarian account when AUTH_MODE=basic:
//
//	AUTH_MODE=basic
//	AUTH_USERNAME=librarian
//	AUTH_PASSWORD_HASH=<bcrypt hash, see `librarydesk hash-password`>
//	API_TOKEN=<token accepted as "Authorization: Bearer" on /api/ routes>
//
// Independently of the mode, HTML forms are CSRF protected (gorilla/csrf) and
// flash messages travel in an scs session:
//
//	AUTH_SESSION_SECRET=<64 hex chars>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
package auth
