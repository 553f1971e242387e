package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/tracknest/tracknest/internal/authz"
	"github.com/tracknest/tracknest/internal/models"
	"gorm.io/gorm"
)

type SprintService struct {
	db          *gorm.DB
	authz       *authz.Service
	holiday     *HolidayService
	dispatcher  *Dispatcher
	countryCode string
}

func NewSprintService(db *gorm.DB, authzSvc *authz.Service, holiday *HolidayService, dispatcher *Dispatcher, countryCode string) *SprintService {
	if countryCode == "" {
		countryCode = "NONE"
	}
	return &SprintService{
		db:          db,
		authz:       authzSvc,
		holiday:     holiday,
		dispatcher:  dispatcher,
		countryCode: countryCode,
	}
}

type SprintRequest struct {
	Name      string     `json:"name" binding:"required"`
	Goal      string     `json:"goal"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// SprintView decorates a sprint with the remaining-workdays figure for
// active sprints with an end date.
type SprintView struct {
	models.Sprint
	RemainingWorkdays *int `json:"remaining_workdays,omitempty"`
}

func (s *SprintService) List(userID, projectID uint) ([]SprintView, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}

	var sprints []models.Sprint
	if err := s.db.Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&sprints).Error; err != nil {
		return nil, err
	}

	views := make([]SprintView, 0, len(sprints))
	for _, sp := range sprints {
		views = append(views, s.view(sp))
	}
	return views, nil
}

func (s *SprintService) Get(userID, projectID, sprintID uint) (*SprintView, error) {
	if err := s.authz.RequireMembership(userID, projectID); err != nil {
		return nil, err
	}

	sprint, err := s.find(projectID, sprintID)
	if err != nil {
		return nil, err
	}
	v := s.view(*sprint)
	return &v, nil
}

func (s *SprintService) Create(userID, projectID uint, req *SprintRequest) (*models.Sprint, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermSprintsManage); err != nil {
		return nil, err
	}
	if err := validateSprintDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	sprint := models.Sprint{
		ProjectID: projectID,
		Name:      req.Name,
		Goal:      req.Goal,
		Status:    models.SprintPlanned,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.db.Create(&sprint).Error; err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (s *SprintService) Update(userID, projectID, sprintID uint, req *SprintRequest) (*models.Sprint, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermSprintsManage); err != nil {
		return nil, err
	}

	sprint, err := s.find(projectID, sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.Status == models.SprintClosed {
		return nil, errors.New("a closed sprint cannot be edited")
	}
	if err := validateSprintDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	sprint.Name = req.Name
	sprint.Goal = req.Goal
	if req.StartDate != nil {
		sprint.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		sprint.EndDate = req.EndDate
	}
	if err := s.db.Save(sprint).Error; err != nil {
		return nil, err
	}
	return sprint, nil
}

// Start activates a planned sprint. Only one sprint may be active per
// project at a time.
func (s *SprintService) Start(userID, projectID, sprintID uint) (*models.Sprint, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermSprintsManage); err != nil {
		return nil, err
	}

	sprint, err := s.find(projectID, sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.Status != models.SprintPlanned {
		return nil, fmt.Errorf("sprint is %s, only a planned sprint can start", sprint.Status)
	}

	var active int64
	s.db.Model(&models.Sprint{}).
		Where("project_id = ? AND status = ?", projectID, models.SprintActive).
		Count(&active)
	if active > 0 {
		return nil, errors.New("another sprint is already active in this project")
	}

	now := time.Now()
	sprint.Status = models.SprintActive
	if sprint.StartDate == nil {
		sprint.StartDate = &now
	}
	if err := s.db.Save(sprint).Error; err != nil {
		return nil, err
	}

	s.emit(EventSprintStarted, projectID, userID, sprint, "started")
	return sprint, nil
}

// Close finishes a sprint. Unfinished tickets are detached so they fall
// back to the backlog.
func (s *SprintService) Close(userID, projectID, sprintID uint) (*models.Sprint, error) {
	if err := s.authz.RequirePermission(userID, projectID, authz.PermSprintsManage); err != nil {
		return nil, err
	}

	sprint, err := s.find(projectID, sprintID)
	if err != nil {
		return nil, err
	}
	if sprint.Status == models.SprintClosed {
		return nil, errors.New("sprint is already closed")
	}

	if err := s.closeSprint(sprint); err != nil {
		return nil, err
	}

	s.emit(EventSprintClosed, projectID, userID, sprint, "closed")
	return sprint, nil
}

// CloseOverdue closes every active sprint whose end date has passed.
// Called by the daily scheduler; returns the closed sprints so the
// caller can notify.
func (s *SprintService) CloseOverdue(now time.Time) ([]models.Sprint, error) {
	var overdue []models.Sprint
	if err := s.db.Where("status = ? AND end_date IS NOT NULL AND end_date < ?", models.SprintActive, now).
		Find(&overdue).Error; err != nil {
		return nil, err
	}

	closed := make([]models.Sprint, 0, len(overdue))
	for i := range overdue {
		sprint := &overdue[i]
		if err := s.closeSprint(sprint); err != nil {
			return closed, err
		}
		closed = append(closed, *sprint)

		var project models.Project
		if err := s.db.First(&project, sprint.ProjectID).Error; err == nil {
			s.dispatcher.Dispatch(newEvent(EventSprintClosed, sprint.ProjectID, project.Key, 0,
				fmt.Sprintf("Sprint %q closed automatically (end date passed)", sprint.Name),
				map[string]interface{}{"sprint_id": sprint.ID, "auto": true}))
		}
	}
	return closed, nil
}

func (s *SprintService) closeSprint(sprint *models.Sprint) error {
	now := time.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		sprint.Status = models.SprintClosed
		sprint.ClosedAt = &now
		if err := tx.Save(sprint).Error; err != nil {
			return err
		}
		// Unfinished tickets return to the backlog
		return tx.Model(&models.Ticket{}).
			Where("sprint_id = ?", sprint.ID).
			Update("sprint_id", nil).Error
	})
}

func (s *SprintService) find(projectID, sprintID uint) (*models.Sprint, error) {
	var sprint models.Sprint
	if err := s.db.Where("project_id = ?", projectID).First(&sprint, sprintID).Error; err != nil {
		return nil, err
	}
	return &sprint, nil
}

func (s *SprintService) view(sprint models.Sprint) SprintView {
	v := SprintView{Sprint: sprint}
	if sprint.Status == models.SprintActive && sprint.EndDate != nil && s.holiday != nil {
		remaining := s.holiday.WorkdaysBetween(time.Now(), *sprint.EndDate, s.countryCode)
		v.RemainingWorkdays = &remaining
	}
	return v
}

func (s *SprintService) emit(eventType string, projectID, userID uint, sprint *models.Sprint, verb string) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return
	}
	s.dispatcher.Dispatch(newEvent(eventType, projectID, project.Key, userID,
		fmt.Sprintf("Sprint %q %s", sprint.Name, verb),
		map[string]interface{}{"sprint_id": sprint.ID}))
}

func validateSprintDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return errors.New("sprint end date is before its start date")
	}
	return nil
}
