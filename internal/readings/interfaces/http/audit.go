package http

import (
	"encoding/json"
	"log"
	"net"
	"net/http"

	"hatchery-monitor/internal/audit"
	"hatchery-monitor/internal/auth"
)

func recordAudit(r *http.Request, logger audit.Logger, errLog *log.Logger, action, resourceID string, metadata map[string]any) {
	if logger == nil || r == nil {
		return
	}
	var raw json.RawMessage
	if len(metadata) > 0 {
		if data, err := json.Marshal(metadata); err == nil {
			raw = data
		}
	}
	entry := audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "readings",
		ResourceID:   resourceID,
		Metadata:     raw,
		IP:           clientIP(r),
		UserAgent:    r.UserAgent(),
	}
	if err := logger.Log(r.Context(), entry); err != nil && errLog != nil {
		errLog.Printf("audit log error: action=%s err=%v", action, err)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
