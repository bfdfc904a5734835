package auth

import "context"

type contextKey string

const (
	contextKeyRole        contextKey = "auth.role"
	contextKeySubject     contextKey = "auth.subject"
	contextKeyParticipant contextKey = "auth.participant_id"
)

// WithIdentity stores auth identity details in context.
func WithIdentity(ctx context.Context, role Role, subject, participantID string) context.Context {
	ctx = context.WithValue(ctx, contextKeyRole, role)
	ctx = context.WithValue(ctx, contextKeySubject, subject)
	ctx = context.WithValue(ctx, contextKeyParticipant, participantID)
	return ctx
}

// RoleFromContext extracts role from context.
func RoleFromContext(ctx context.Context) Role {
	if ctx == nil {
		return ""
	}
	value := ctx.Value(contextKeyRole)
	if role, ok := value.(Role); ok {
		return role
	}
	if role, ok := value.(string); ok {
		if normalized, valid := NormalizeRole(role); valid {
			return normalized
		}
	}
	return ""
}

// SubjectFromContext extracts subject from context.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if subject, ok := ctx.Value(contextKeySubject).(string); ok {
		return subject
	}
	return ""
}

// ParticipantIDFromContext extracts the caller's own participant id.
func ParticipantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKeyParticipant).(string); ok {
		return id
	}
	return ""
}

// CanAccessParticipant reports whether the caller may access the given
// participant's billing data. Operators and admins may access any;
// participants only their own.
func CanAccessParticipant(ctx context.Context, participantID string) bool {
	role := RoleFromContext(ctx)
	if RoleAtLeast(role, RoleOperator) {
		return true
	}
	if role == RoleParticipant {
		own := ParticipantIDFromContext(ctx)
		return own != "" && own == participantID
	}
	// No identity in context means auth was exempt for this route.
	return role == ""
}
