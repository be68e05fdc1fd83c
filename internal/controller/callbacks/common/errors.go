package common

import (
	"errors"

	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/Freeeeeet/dispatch_bot/internal/service"
)

// Общие ошибки для обработчиков
var (
	ErrNoMessage     = errors.New("no message in callback")
	ErrInvalidFormat = errors.New("invalid callback format")
	ErrNoGesture     = errors.New("no active gesture")
	ErrExpired       = errors.New("pending action expired")
)

var validationMessages = map[planning.ValidationCode]string{
	planning.CodeSlotFull:         "⛔ Ce créneau est complet pour ce chauffeur",
	planning.CodeIncompatibleSlot: "⛔ L'heure de la course ne correspond pas à ce créneau",
	planning.CodeDriverOutOfOrder: "⛔ Ce chauffeur est hors service",
	planning.CodeTerminalCourse:   "⛔ Cette course est terminée ou annulée",
	planning.CodeNeverAssigned:    "⛔ Cette course n'a jamais été assignée",
	planning.CodeInvalidStatus:    "⛔ Changement de statut impossible",
	planning.CodeMissingField:     "⛔ Champ obligatoire manquant",
	planning.CodeForbidden:        "⛔ Action non autorisée",
	planning.CodeNoCompatible:     "Aucune course compatible avec ce créneau",
	planning.CodeBadPayload:       "❌ Données invalides",
}

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	var (
		ve *planning.ValidationError
		pe *planning.PersistenceError
		ce *planning.ConflictError
		le *planning.LoadError
	)

	switch {
	case errors.As(err, &ve):
		if msg, ok := validationMessages[ve.Code]; ok {
			return msg
		}
		return "⛔ Action impossible"
	case errors.As(err, &ce):
		return "⚠️ La course a été modifiée entre-temps, l'action est annulée"
	case errors.As(err, &pe):
		return "❌ Le serveur a refusé la modification, elle a été annulée"
	case errors.As(err, &le):
		return "❌ Impossible de charger le planning, réessayez plus tard"
	case errors.Is(err, planning.ErrCourseNotFound):
		return "❌ Course introuvable"
	case errors.Is(err, planning.ErrDriverNotFound):
		return "❌ Chauffeur introuvable"
	case errors.Is(err, service.ErrForbidden):
		return "⛔ Action réservée aux dispatcheurs"
	case errors.Is(err, service.ErrUserNotFound):
		return "❌ Utilisateur introuvable. Utilisez /start"
	case errors.Is(err, service.ErrClientNotFound):
		return "❌ Client introuvable"
	case errors.Is(err, service.ErrInvalidInput):
		return "❌ Saisie invalide"
	case errors.Is(err, ErrNoMessage):
		return "❌ Erreur de traitement du message"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Format de données invalide"
	case errors.Is(err, ErrNoGesture):
		return "Sélectionnez d'abord une course"
	case errors.Is(err, ErrExpired):
		return "⌛ Action expirée, recommencez"
	default:
		return "❌ Une erreur est survenue"
	}
}
