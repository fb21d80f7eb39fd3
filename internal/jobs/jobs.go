package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// StartScheduler schedules the daily manifest refresh and blocks.
// Singleton mode guarantees runs never overlap, which is what keeps
// the manifest single-writer.
func StartScheduler(refreshAt string, run func() error) error {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	log.Printf("Scheduling manifest refresh daily at %s UTC.", refreshAt)
	_, err := s.Every(1).Day().At(refreshAt).Do(func() {
		log.Println("Scheduler is triggering manifest refresh")
		if err := run(); err != nil {
			log.Printf("Scheduled refresh failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	log.Println("Starting background job scheduler...")
	s.StartBlocking()
	return nil
}
