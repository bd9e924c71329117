package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/haliltoma/adonisjs-ecommerce-core-sub001/internal/domain/shared"
)

// EventSerializer encodes outbox payloads as the JSON of the concrete event
// struct. The outbox row stores the event type, which selects the decoder.
type EventSerializer struct {
	mu       sync.RWMutex
	decoders map[string]eventDecoder
}

type eventDecoder struct {
	structType reflect.Type
}

func (d eventDecoder) decode(data []byte) (shared.DomainEvent, error) {
	target := reflect.New(d.structType).Interface()
	if err := json.Unmarshal(data, target); err != nil {
		return nil, err
	}
	event, ok := target.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("%s does not implement DomainEvent", d.structType)
	}
	return event, nil
}

func NewEventSerializer() *EventSerializer {
	return &EventSerializer{decoders: make(map[string]eventDecoder)}
}

// Register binds an event type to the struct it decodes into. Several event
// types may share one struct; binding one type to two structs panics.
func (s *EventSerializer) Register(eventType string, prototype shared.DomainEvent) {
	structType := reflect.TypeOf(prototype)
	for structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.decoders[eventType]; ok && d.structType != structType {
		panic(fmt.Sprintf("event type %s already registered as %s", eventType, d.structType))
	}
	s.decoders[eventType] = eventDecoder{structType: structType}
}

// Serialize refuses events whose type has no decoder, so nothing is written
// to the outbox that the processor could not read back.
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	eventType := event.EventType()
	if !s.IsRegistered(eventType) {
		return nil, fmt.Errorf("event type %s is not registered", eventType)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", eventType, err)
	}
	return data, nil
}

func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	d, ok := s.decoders[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	event, err := d.decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal event %s: %w", eventType, err)
	}
	return event, nil
}

func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	_, ok := s.decoders[eventType]
	s.mu.RUnlock()
	return ok
}

// RegisteredTypes lists the known event types, sorted
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	types := make([]string, 0, len(s.decoders))
	for t := range s.decoders {
		types = append(types, t)
	}
	s.mu.RUnlock()
	slices.Sort(types)
	return types
}
