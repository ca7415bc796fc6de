package worker

import (
	"github.com/spec-kit/tempofiller/internal/service"
)

// StartJournalWorker registers the journal's event handlers.
func StartJournalWorker(journalService *service.JournalService) {
	if journalService == nil {
		return
	}
	journalService.RegisterHandlers()
}
