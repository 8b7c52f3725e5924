// Package middleware 提供 gin 的中間件，目前只有 Bearer token 驗證。
package middleware
