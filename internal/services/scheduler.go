package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tracknest/tracknest/internal/config"
	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/pkg/logger"
	"gorm.io/gorm"
)

// SprintScheduler runs the daily maintenance job: overdue active
// sprints are closed, and on workdays each IM-enabled project gets a
// digest of tickets due today or already overdue.
type SprintScheduler struct {
	db            *gorm.DB
	sprintService *SprintService
	notification  *NotificationService
	holiday       *HolidayService
	cfg           *config.SchedulerConfig
	cronScheduler *cron.Cron
}

func NewSprintScheduler(db *gorm.DB, sprintService *SprintService, notification *NotificationService, holiday *HolidayService, cfg *config.SchedulerConfig) *SprintScheduler {
	return &SprintScheduler{
		db:            db,
		sprintService: sprintService,
		notification:  notification,
		holiday:       holiday,
		cfg:           cfg,
	}
}

func (s *SprintScheduler) Start() {
	if !s.cfg.Enabled {
		logger.Infof("[Scheduler] Disabled by config")
		return
	}

	hour := s.cfg.DigestHour
	if hour < 0 || hour > 23 {
		hour = 9
	}

	s.cronScheduler = cron.New()
	cronExpr := fmt.Sprintf("0 %d * * *", hour)
	if _, err := s.cronScheduler.AddFunc(cronExpr, s.RunDaily); err != nil {
		logger.Errorf("[Scheduler] Failed to add cron job: %v", err)
		return
	}

	s.cronScheduler.Start()
	logger.Infof("[Scheduler] Daily sprint job scheduled at %02d:00", hour)
}

func (s *SprintScheduler) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// RunDaily executes one scheduler pass. Exported so an operator can
// trigger it by hand through the admin API.
func (s *SprintScheduler) RunDaily() {
	now := time.Now()

	closed, err := s.sprintService.CloseOverdue(now)
	if err != nil {
		logger.Errorf("[Scheduler] Failed to close overdue sprints: %v", err)
	} else if len(closed) > 0 {
		logger.Infof("[Scheduler] Closed %d overdue sprint(s)", len(closed))
	}

	// Digests only go out on workdays
	if !s.holiday.IsWorkday(now, s.cfg.CountryCode) {
		logger.Infof("[Scheduler] %s is not a workday, skipping due-ticket digest", now.Format("2006-01-02"))
		return
	}

	if err := s.sendDueDigests(now); err != nil {
		logger.Errorf("[Scheduler] Due-ticket digest failed: %v", err)
	}
}

func (s *SprintScheduler) sendDueDigests(now time.Time) error {
	var projects []models.Project
	if err := s.db.Where("im_enabled = ? AND im_bot_id IS NOT NULL", true).Find(&projects).Error; err != nil {
		return err
	}

	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	for i := range projects {
		project := &projects[i]

		var due []models.Ticket
		if err := s.db.Where("project_id = ? AND due_date IS NOT NULL AND due_date <= ?", project.ID, endOfDay).
			Order("due_date ASC").Limit(20).
			Find(&due).Error; err != nil {
			logger.Errorf("[Scheduler] Failed to load due tickets for project %d: %v", project.ID, err)
			continue
		}
		if len(due) == 0 {
			continue
		}

		summary := fmt.Sprintf("%d ticket(s) due today or overdue:", len(due))
		for _, t := range due {
			summary += fmt.Sprintf("\n- %s %s (due %s)", t.DisplayKey(project.Key), t.Title, t.DueDate.Format("2006-01-02"))
		}

		evt := newEvent(EventDueDigest, project.ID, project.Key, 0, summary, map[string]interface{}{
			"count": len(due),
		})
		if err := s.notification.SendEventNotification(project, evt); err != nil {
			logger.Errorf("[Scheduler] Digest for project %d failed: %v", project.ID, err)
		}
	}

	return nil
}
