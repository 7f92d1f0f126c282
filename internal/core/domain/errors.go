package domain

import "errors"

var (
	// ErrEventTypeNotFound - слаг не найден ни в личной, ни в командных коллекциях
	ErrEventTypeNotFound = errors.New("event type not found")

	// ErrEventTypeAmbiguous - слаг найден более чем в одной коллекции,
	// однозначное разрешение невозможно
	ErrEventTypeAmbiguous = errors.New("event type slug is ambiguous")

	// ErrSlotTaken - слот уже занят или недоступен для бронирования
	ErrSlotTaken = errors.New("slot is no longer available")

	// ErrUpstream - Cal.com ответил ошибкой
	ErrUpstream = errors.New("calcom api error")

	// ErrNetwork - Cal.com недоступен или не ответил за таймаут
	ErrNetwork = errors.New("calcom api unreachable")
)
