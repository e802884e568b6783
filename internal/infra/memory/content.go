package memory

import (
	"context"
	"log"
	"sync"

	"mathfalta-service/internal/app"
)

// LessonCounter reports a fixed lesson count.
type LessonCounter struct {
	n int
}

func NewLessonCounter(n int) *LessonCounter {
	return &LessonCounter{n: n}
}

func (c *LessonCounter) CountLessons(context.Context) (int, error) {
	return c.n, nil
}

// ImageLog releases images by logging their ids. No object store is attached.
type ImageLog struct {
	logger *log.Logger
}

var (
	_ app.ImageStore = (*ImageLog)(nil)
	_ app.ImageStore = (*ImageStore)(nil)
)

func NewImageLog(logger *log.Logger) *ImageLog {
	return &ImageLog{logger: logger}
}

func (l *ImageLog) Destroy(_ context.Context, publicID string) error {
	l.logger.Printf("image %s released", publicID)
	return nil
}

// ImageStore records destroyed image ids in memory, in call order.
type ImageStore struct {
	mu        sync.Mutex
	destroyed []string
}

func NewImageStore() *ImageStore {
	return &ImageStore{}
}

func (s *ImageStore) Destroy(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

// Destroyed lists the ids passed to Destroy, in call order.
func (s *ImageStore) Destroyed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.destroyed...)
}
