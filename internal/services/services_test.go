package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"planboard.com/planboard/internal/constants"
	dto "planboard.com/planboard/internal/data_models"
	apperrors "planboard.com/planboard/internal/errors"
	model "planboard.com/planboard/internal/models"
	"planboard.com/planboard/internal/patch"
	repository "planboard.com/planboard/internal/repositories"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.OrgMembership{},
		&model.Workspace{},
		&model.Membership{},
		&model.DailyPlan{},
		&model.Task{},
		&model.Subtask{},
		&model.Attachment{},
		&model.Category{},
		&model.Comment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	return db
}

type testEnv struct {
	db         *gorm.DB
	tasks      *repository.TaskRepository
	plans      *repository.PlanRepository
	workspaces *repository.WorkspaceRepository
	access     *AccessService
	taskSvc    *TaskService
	planSvc    *PlanService
	catSvc     *CategoryService
	wsSvc      *WorkspaceService
	generator  *GeneratorService
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)

	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	planRepo := repository.NewPlanRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	access := NewAccessService(membershipRepo, workspaceRepo, nil)
	recurrence := NewRecurrenceService(taskRepo, planRepo)

	return &testEnv{
		db:         db,
		tasks:      taskRepo,
		plans:      planRepo,
		workspaces: workspaceRepo,
		access:     access,
		taskSvc:    NewTaskService(taskRepo, subtaskRepo, planRepo, access, recurrence),
		planSvc:    NewPlanService(planRepo, taskRepo, commentRepo, access),
		catSvc:     NewCategoryService(categoryRepo, access),
		wsSvc:      NewWorkspaceService(workspaceRepo, access),
		generator:  NewGeneratorService(taskRepo, planRepo),
	}
}

func (e *testEnv) seedWorkspace(t *testing.T, orgID *string) string {
	wsType := constants.WorkspacePersonal
	if orgID != nil {
		wsType = constants.WorkspaceOrganization
	}
	ws := model.Workspace{
		ID:    uuid.NewString(),
		Name:  "Workspace",
		Type:  wsType,
		OrgID: orgID,
	}
	if err := e.db.Create(&ws).Error; err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
	return ws.ID
}

func (e *testEnv) seedMember(t *testing.T, userID, workspaceID string, role constants.Role) {
	m := model.Membership{
		ID:          uuid.NewString(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		Role:        role,
	}
	if err := e.db.Create(&m).Error; err != nil {
		t.Fatalf("seed membership: %v", err)
	}
}

func (e *testEnv) seedOrgMember(t *testing.T, orgID, userID string, role constants.OrgRole, status constants.OrgStatus) {
	m := model.OrgMembership{
		ID:     uuid.NewString(),
		OrgID:  orgID,
		UserID: userID,
		Role:   role,
		Status: status,
	}
	if err := e.db.Create(&m).Error; err != nil {
		t.Fatalf("seed org membership: %v", err)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	date, err := ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return date
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestAccessService_DirectMembershipWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	orgID := uuid.NewString()
	wsID := env.seedWorkspace(t, &orgID)
	userID := uuid.NewString()

	env.seedMember(t, userID, wsID, constants.RoleMember)
	env.seedOrgMember(t, orgID, userID, constants.OrgRoleOwner, constants.OrgStatusActive)

	role, ok, err := env.access.Resolve(ctx, userID, wsID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !ok || role != constants.RoleMember {
		t.Errorf("direct membership should win, got role=%s ok=%v", role, ok)
	}
}

func TestAccessService_OrgElevation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	orgID := uuid.NewString()
	wsID := env.seedWorkspace(t, &orgID)
	userID := uuid.NewString()

	env.seedOrgMember(t, orgID, userID, constants.OrgRoleAdmin, constants.OrgStatusActive)

	role, ok, err := env.access.Resolve(ctx, userID, wsID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !ok || role != constants.RoleAdmin {
		t.Errorf("org admin without direct membership should resolve to admin, got role=%s ok=%v", role, ok)
	}

	manage, err := env.access.ResolveManage(ctx, userID, wsID)
	if err != nil {
		t.Fatalf("resolve manage failed: %v", err)
	}
	if !manage {
		t.Error("org admin should have manage permission")
	}
}

func TestAccessService_InactiveOrgMembershipDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	orgID := uuid.NewString()
	wsID := env.seedWorkspace(t, &orgID)
	userID := uuid.NewString()

	env.seedOrgMember(t, orgID, userID, constants.OrgRoleAdmin, constants.OrgStatusInvited)

	_, ok, err := env.access.Resolve(ctx, userID, wsID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if ok {
		t.Error("an invited, not yet active org membership must not grant access")
	}
}

func TestAccessService_CanTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	orgID := uuid.NewString()
	fromID := env.seedWorkspace(t, &orgID)
	toID := env.seedWorkspace(t, &orgID)
	personalID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()

	env.seedMember(t, userID, fromID, constants.RoleAdmin)
	env.seedMember(t, userID, toID, constants.RoleAdmin)
	env.seedMember(t, userID, personalID, constants.RoleAdmin)

	if err := env.access.CanTransfer(ctx, userID, fromID, fromID); !errors.Is(err, apperrors.ErrSameWorkspace) {
		t.Errorf("expected ErrSameWorkspace, got %v", err)
	}
	if err := env.access.CanTransfer(ctx, userID, fromID, personalID); !errors.Is(err, apperrors.ErrTransferMismatch) {
		t.Errorf("expected ErrTransferMismatch for shape mismatch, got %v", err)
	}
	if err := env.access.CanTransfer(ctx, userID, fromID, toID); err != nil {
		t.Errorf("transfer between matching workspaces should be allowed: %v", err)
	}

	outsiderID := uuid.NewString()
	env.seedMember(t, outsiderID, fromID, constants.RoleAdmin)
	if err := env.access.CanTransfer(ctx, outsiderID, fromID, toID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("expected ErrForbidden without admin on both sides, got %v", err)
	}
}

func TestComputeSchedule(t *testing.T) {
	planDate := mustDate(t, "2024-01-10")

	start, end, err := ComputeSchedule(ScheduleInput{
		PlanDate:   planDate,
		StartClock: patch.Of("09:00"),
		Estimated:  patch.Of(45),
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	wantStart := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 1, 10, 9, 45, 0, 0, time.UTC)
	if start == nil || !start.Equal(wantStart) {
		t.Errorf("expected start %v, got %v", wantStart, start)
	}
	if end == nil || !end.Equal(wantEnd) {
		t.Errorf("expected end %v, got %v", wantEnd, end)
	}

	// Feeding the result back as previous state must not drift.
	again, againEnd, err := ComputeSchedule(ScheduleInput{
		PlanDate:      planDate,
		PrevStart:     start,
		PrevEstimated: intPtr(45),
	})
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	if !again.Equal(*start) || !againEnd.Equal(*end) {
		t.Error("recomputing with unchanged inputs must yield the same schedule")
	}
}

func TestComputeSchedule_DurationOnlyChange(t *testing.T) {
	planDate := mustDate(t, "2024-01-10")
	prevStart := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	prev := 30

	start, end, err := ComputeSchedule(ScheduleInput{
		PlanDate:      planDate,
		Estimated:     patch.Of(45),
		PrevStart:     &prevStart,
		PrevEstimated: &prev,
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if start == nil || !start.Equal(prevStart) {
		t.Errorf("start should survive a duration-only change, got %v", start)
	}
	wantEnd := prevStart.Add(45 * time.Minute)
	if end == nil || !end.Equal(wantEnd) {
		t.Errorf("expected end %v, got %v", wantEnd, end)
	}
}

func TestComputeSchedule_NullClockClears(t *testing.T) {
	prevStart := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	prev := 30

	start, end, err := ComputeSchedule(ScheduleInput{
		PlanDate:      mustDate(t, "2024-01-10"),
		StartClock:    patch.Null[string](),
		PrevStart:     &prevStart,
		PrevEstimated: &prev,
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if start != nil || end != nil {
		t.Errorf("explicit null clock must clear both ends, got start=%v end=%v", start, end)
	}
}

func TestComputeSchedule_InvalidInputs(t *testing.T) {
	planDate := mustDate(t, "2024-01-10")

	_, _, err := ComputeSchedule(ScheduleInput{
		PlanDate:   planDate,
		StartClock: patch.Of("25:00"),
	})
	if !errors.Is(err, apperrors.ErrInvalidClock) {
		t.Errorf("expected ErrInvalidClock, got %v", err)
	}

	_, _, err = ComputeSchedule(ScheduleInput{
		PlanDate:   planDate,
		StartClock: patch.Of("09:00"),
		Estimated:  patch.Of(24*60 + 1),
	})
	if !errors.Is(err, apperrors.ErrInvalidMinutes) {
		t.Errorf("expected ErrInvalidMinutes, got %v", err)
	}
}

func TestTaskService_CreateScheduled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	task, err := env.taskSvc.CreateTask(ctx, userID, dto.CreateTaskRequest{
		WorkspaceID:      wsID,
		Title:            "Write report",
		PlanDate:         strPtr("2024-01-10"),
		StartTime:        strPtr("09:00"),
		EstimatedMinutes: intPtr(45),
	})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	if task.Status != constants.StatusPlanned {
		t.Errorf("expected status planned, got %s", task.Status)
	}
	if task.DailyPlanID == nil {
		t.Fatal("task should belong to a plan")
	}
	if task.Position != 1 {
		t.Errorf("first task should sit at position 1, got %d", task.Position)
	}
	wantEnd := time.Date(2024, 1, 10, 9, 45, 0, 0, time.UTC)
	if task.EndTime == nil || !task.EndTime.Equal(wantEnd) {
		t.Errorf("expected end %v, got %v", wantEnd, task.EndTime)
	}
}

func TestTaskService_StartTimeRequiresPlan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	_, err := env.taskSvc.CreateTask(ctx, userID, dto.CreateTaskRequest{
		WorkspaceID: wsID,
		Title:       "Idea",
		StartTime:   strPtr("09:00"),
	})
	if !errors.Is(err, apperrors.ErrTaskUnscheduled) {
		t.Errorf("expected ErrTaskUnscheduled, got %v", err)
	}
}

func TestTaskService_InsertShiftsPositions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		_, err := env.taskSvc.CreateTask(ctx, userID, dto.CreateTaskRequest{
			WorkspaceID: wsID,
			Title:       title,
			PlanDate:    strPtr("2024-01-10"),
		})
		if err != nil {
			t.Fatalf("create %s failed: %v", title, err)
		}
	}

	inserted, err := env.taskSvc.CreateTask(ctx, userID, dto.CreateTaskRequest{
		WorkspaceID: wsID,
		Title:       "squeezed in",
		PlanDate:    strPtr("2024-01-10"),
		Position:    intPtr(2),
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if inserted.Position != 2 {
		t.Errorf("expected position 2, got %d", inserted.Position)
	}

	tasks, err := env.tasks.ListByPlan(ctx, *inserted.DailyPlanID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := map[string]int{"first": 1, "squeezed in": 2, "second": 3, "third": 4}
	for _, task := range tasks {
		if want[task.Title] != task.Position {
			t.Errorf("task %q at position %d, want %d", task.Title, task.Position, want[task.Title])
		}
	}
}

func TestTaskService_LockedAndReinstate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	task, err := env.taskSvc.CreateTask(ctx, userID, dto.CreateTaskRequest{
		WorkspaceID: wsID,
		Title:       "Daily standup",
		PlanDate:    strPtr("2024-01-10"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := env.taskSvc.UpdateTask(ctx, userID, task.ID, dto.UpdateTaskRequest{
		Status: patch.Of("done"),
	}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	_, err = env.taskSvc.UpdateTask(ctx, userID, task.ID, dto.UpdateTaskRequest{
		Title: patch.Of("renamed"),
	})
	if !errors.Is(err, apperrors.ErrTaskLocked) {
		t.Errorf("locked task should reject edits, got %v", err)
	}

	// The only patch a locked task accepts is {status: planned}.
	_, err = env.taskSvc.UpdateTask(ctx, userID, task.ID, dto.UpdateTaskRequest{
		Status: patch.Of("planned"),
		Title:  patch.Of("renamed"),
	})
	if !errors.Is(err, apperrors.ErrTaskLocked) {
		t.Errorf("reinstate combined with other edits should stay locked, got %v", err)
	}

	reinstated, err := env.taskSvc.UpdateTask(ctx, userID, task.ID, dto.UpdateTaskRequest{
		Status: patch.Of("planned"),
	})
	if err != nil {
		t.Fatalf("reinstate failed: %v", err)
	}
	if reinstated.Status != constants.StatusPlanned {
		t.Errorf("expected status planned, got %s", reinstated.Status)
	}

	if _, err := env.taskSvc.UpdateTask(ctx, userID, task.ID, dto.UpdateTaskRequest{
		Title: patch.Of("renamed"),
	}); err != nil {
		t.Errorf("unlocked task should accept edits: %v", err)
	}
}

func TestTaskService_DetachToIdeaPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	task, err := env.taskSvc.CreateTask(ctx, userID, dto.CreateTaskRequest{
		WorkspaceID:      wsID,
		Title:            "Maybe later",
		PlanDate:         strPtr("2024-01-10"),
		StartTime:        strPtr("09:00"),
		EstimatedMinutes: intPtr(30),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	detached, err := env.taskSvc.UpdateTask(ctx, userID, task.ID, dto.UpdateTaskRequest{
		DailyPlanID: patch.Null[string](),
	})
	if err != nil {
		t.Fatalf("detach failed: %v", err)
	}

	if detached.DailyPlanID != nil {
		t.Error("detached task should have no plan")
	}
	if detached.Status != constants.StatusUnplanned {
		t.Errorf("expected status unplanned, got %s", detached.Status)
	}
	if detached.StartTime != nil || detached.EndTime != nil {
		t.Error("the schedule must not survive a detach")
	}
	if detached.Position != 0 {
		t.Errorf("expected position 0, got %d", detached.Position)
	}

	ideas, err := env.taskSvc.ListIdeas(ctx, userID, wsID)
	if err != nil {
		t.Fatalf("list ideas failed: %v", err)
	}
	if len(ideas) != 1 || ideas[0].ID != task.ID {
		t.Errorf("detached task should appear in the idea pool, got %d ideas", len(ideas))
	}
}

func TestTaskService_OnlyOwnerMutates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	ownerID := uuid.NewString()
	peerID := uuid.NewString()
	env.seedMember(t, ownerID, wsID, constants.RoleMember)
	env.seedMember(t, peerID, wsID, constants.RoleSupervisor)

	task, err := env.taskSvc.CreateTask(ctx, ownerID, dto.CreateTaskRequest{
		WorkspaceID: wsID,
		Title:       "Private work",
		PlanDate:    strPtr("2024-01-10"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Supervisors may read but never edit another member's task.
	if _, err := env.taskSvc.GetTask(ctx, peerID, task.ID); err != nil {
		t.Errorf("workspace member should be able to read the task: %v", err)
	}
	_, err = env.taskSvc.UpdateTask(ctx, peerID, task.ID, dto.UpdateTaskRequest{
		Title: patch.Of("hijacked"),
	})
	if !errors.Is(err, apperrors.ErrNotTaskOwner) {
		t.Errorf("expected ErrNotTaskOwner, got %v", err)
	}
}

func TestTaskService_StatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	idea, err := env.taskSvc.CreateTask(ctx, userID, dto.CreateTaskRequest{
		WorkspaceID: wsID,
		Title:       "Someday",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// A terminal status is only reachable from planned.
	_, err = env.taskSvc.UpdateTask(ctx, userID, idea.ID, dto.UpdateTaskRequest{
		Status: patch.Of("done"),
	})
	if !errors.Is(err, apperrors.ErrInvalidStatus) {
		t.Errorf("unplanned task must not complete directly, got %v", err)
	}
}

func TestTaskService_EstimateRangeAlwaysValidated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	idea, err := env.taskSvc.CreateTask(ctx, userID, dto.CreateTaskRequest{
		WorkspaceID: wsID,
		Title:       "Someday",
	})
	if err != nil {
		t.Fatalf("create idea failed: %v", err)
	}

	// No schedule gets computed for an idea, the range check must
	// fire anyway.
	_, err = env.taskSvc.UpdateTask(ctx, userID, idea.ID, dto.UpdateTaskRequest{
		EstimatedMinutes: patch.Of(-50),
	})
	if !errors.Is(err, apperrors.ErrInvalidMinutes) {
		t.Errorf("negative estimate on an idea should be rejected, got %v", err)
	}

	planned, err := env.taskSvc.CreateTask(ctx, userID, dto.CreateTaskRequest{
		WorkspaceID: wsID,
		Title:       "No start yet",
		PlanDate:    strPtr("2024-01-10"),
	})
	if err != nil {
		t.Fatalf("create planned failed: %v", err)
	}

	// Without a stored start the schedule path returns early too.
	_, err = env.taskSvc.UpdateTask(ctx, userID, planned.ID, dto.UpdateTaskRequest{
		EstimatedMinutes: patch.Of(100000),
	})
	if !errors.Is(err, apperrors.ErrInvalidMinutes) {
		t.Errorf("oversized estimate without a start should be rejected, got %v", err)
	}

	_, err = env.taskSvc.UpdateTask(ctx, userID, planned.ID, dto.UpdateTaskRequest{
		StartTime:        patch.Null[string](),
		EstimatedMinutes: patch.Of(-5),
	})
	if !errors.Is(err, apperrors.ErrInvalidMinutes) {
		t.Errorf("bad estimate next to a null start should be rejected, got %v", err)
	}

	stored, err := env.tasks.FindByID(ctx, planned.ID)
	if err != nil {
		t.Fatalf("find task failed: %v", err)
	}
	if stored.EstimatedMinutes != nil {
		t.Errorf("rejected estimates must not reach the store, got %d", *stored.EstimatedMinutes)
	}

	subtask, err := env.taskSvc.CreateSubtask(ctx, userID, planned.ID, dto.CreateSubtaskRequest{
		Title: "Step one",
	})
	if err != nil {
		t.Fatalf("create subtask failed: %v", err)
	}
	_, err = env.taskSvc.UpdateSubtask(ctx, userID, planned.ID, subtask.ID, dto.UpdateSubtaskRequest{
		EstimatedMinutes: patch.Of(-10),
	})
	if !errors.Is(err, apperrors.ErrInvalidMinutes) {
		t.Errorf("negative subtask estimate should be rejected, got %v", err)
	}
}

func TestTaskService_MixedRecurrenceAndScalarPatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	template := seedDailyTemplate(t, env, userID, wsID)

	updated, err := env.taskSvc.UpdateTask(ctx, userID, template.ID, dto.UpdateTaskRequest{
		Title:      patch.Of("Evening review"),
		RepeatTill: patch.Of("2024-03-05"),
	})
	if err != nil {
		t.Fatalf("mixed patch failed: %v", err)
	}

	if updated.Title != "Evening review" {
		t.Errorf("scalar field should survive a mixed patch, got %q", updated.Title)
	}
	boundary := mustDate(t, "2024-03-05")
	if updated.RepeatTill == nil || !updated.RepeatTill.Equal(boundary) {
		t.Errorf("recurrence field should apply in the same patch, got %v", updated.RepeatTill)
	}
}

func seedDailyTemplate(t *testing.T, env *testEnv, userID, wsID string) *model.Task {
	template, err := env.taskSvc.CreateTask(context.Background(), userID, dto.CreateTaskRequest{
		WorkspaceID:      wsID,
		Title:            "Morning review",
		PlanDate:         strPtr("2024-03-01"),
		EstimatedMinutes: intPtr(15),
		RecurrenceRule:   strPtr("daily"),
		RecurrenceTime:   strPtr("08:30"),
	})
	if err != nil {
		t.Fatalf("create template failed: %v", err)
	}
	return template
}

func TestGenerator_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	template := seedDailyTemplate(t, env, userID, wsID)

	created, err := env.generator.GenerateForDate(ctx, mustDate(t, "2024-03-02"))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if created != 1 {
		t.Errorf("expected 1 instance, got %d", created)
	}

	created, err = env.generator.GenerateForDate(ctx, mustDate(t, "2024-03-02"))
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}
	if created != 0 {
		t.Errorf("second run for the same date must create nothing, got %d", created)
	}

	instances, err := env.tasks.ListInstances(ctx, template.ID)
	if err != nil {
		t.Fatalf("list instances failed: %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}

	instance := instances[0]
	if instance.Status != constants.StatusPlanned {
		t.Errorf("instance should be planned, got %s", instance.Status)
	}
	wantStart := time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)
	if instance.StartTime == nil || !instance.StartTime.Equal(wantStart) {
		t.Errorf("expected instance start %v, got %v", wantStart, instance.StartTime)
	}
	if instance.EndTime == nil || !instance.EndTime.Equal(wantStart.Add(15*time.Minute)) {
		t.Errorf("instance end should follow the template estimate, got %v", instance.EndTime)
	}
}

func TestGenerator_RuleOccurrences(t *testing.T) {
	cases := []struct {
		name  string
		rule  constants.RecurrenceRule
		start string
		till  string
		date  string
		want  bool
	}{
		{"daily fires every day", constants.RecurDaily, "2024-01-01", "", "2024-01-15", true},
		{"daily before start", constants.RecurDaily, "2024-01-10", "", "2024-01-05", false},
		{"daily on inclusive boundary", constants.RecurDaily, "2024-01-01", "2024-01-05", "2024-01-05", true},
		{"daily past boundary", constants.RecurDaily, "2024-01-01", "2024-01-05", "2024-01-06", false},
		{"weekdays skips saturday", constants.RecurWeekdays, "2024-01-01", "", "2024-01-06", false},
		{"weekdays fires monday", constants.RecurWeekdays, "2024-01-01", "", "2024-01-08", true},
		{"weekly matches anchor weekday", constants.RecurWeekly, "2024-01-03", "", "2024-01-10", true},
		{"weekly other weekday", constants.RecurWeekly, "2024-01-03", "", "2024-01-09", false},
		{"biweekly odd week", constants.RecurBiweekly, "2024-01-03", "", "2024-01-10", false},
		{"biweekly even week", constants.RecurBiweekly, "2024-01-03", "", "2024-01-17", true},
		{"monthly same day", constants.RecurMonthly, "2024-01-15", "", "2024-02-15", true},
		{"monthly clamps short month", constants.RecurMonthly, "2024-01-31", "", "2024-02-29", true},
		{"monthly clamped day only", constants.RecurMonthly, "2024-01-31", "", "2024-02-28", false},
		{"nth weekday first tuesday", constants.RecurMonthlyNthWeekday, "2024-01-02", "", "2024-02-06", true},
		{"nth weekday second tuesday", constants.RecurMonthlyNthWeekday, "2024-01-02", "", "2024-02-13", false},
		{"fifth weekday falls back to last", constants.RecurMonthlyNthWeekday, "2024-01-29", "", "2024-02-26", true},
		{"fifth weekday not last", constants.RecurMonthlyNthWeekday, "2024-01-29", "", "2024-02-19", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start := mustDate(t, tc.start)
			rule := tc.rule
			template := &model.Task{
				RecurrenceRule:      &rule,
				RecurrenceStartDate: &start,
			}
			if tc.till != "" {
				till := mustDate(t, tc.till)
				template.RepeatTill = &till
			}

			if got := dueOn(template, mustDate(t, tc.date)); got != tc.want {
				t.Errorf("dueOn(%s, %s) = %v, want %v", tc.rule, tc.date, got, tc.want)
			}
		})
	}
}

func TestRecurrence_ClearCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	template := seedDailyTemplate(t, env, userID, wsID)
	for _, day := range []string{"2024-03-02", "2024-03-03", "2024-03-04"} {
		if _, err := env.generator.GenerateForDate(ctx, mustDate(t, day)); err != nil {
			t.Fatalf("generate %s failed: %v", day, err)
		}
	}

	cleared, err := env.taskSvc.UpdateTask(ctx, userID, template.ID, dto.UpdateTaskRequest{
		RecurrenceRule: patch.Null[string](),
	})
	if err != nil {
		t.Fatalf("clear rule failed: %v", err)
	}
	if cleared.RecurrenceRule != nil || cleared.RecurrenceActive {
		t.Error("template should have no rule and be inactive after clear")
	}

	instances, err := env.tasks.ListInstances(ctx, template.ID)
	if err != nil {
		t.Fatalf("list instances failed: %v", err)
	}
	if len(instances) != 3 {
		t.Fatalf("clearing must keep existing instances, got %d", len(instances))
	}
	for _, instance := range instances {
		if instance.RecurrenceRule != nil || instance.RecurrenceTime != nil {
			t.Errorf("instance %s still carries recurrence metadata", instance.ID)
		}
	}
}

func TestRecurrence_RepeatTillPrunes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	template := seedDailyTemplate(t, env, userID, wsID)
	for day := 2; day <= 10; day++ {
		date := time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
		if _, err := env.generator.GenerateForDate(ctx, date); err != nil {
			t.Fatalf("generate day %d failed: %v", day, err)
		}
	}

	// An instance may sit on any day through RepeatTill; later ones go.
	if _, err := env.taskSvc.UpdateTask(ctx, userID, template.ID, dto.UpdateTaskRequest{
		RepeatTill: patch.Of("2024-03-05"),
	}); err != nil {
		t.Fatalf("set repeat till failed: %v", err)
	}

	instances, err := env.tasks.ListInstances(ctx, template.ID)
	if err != nil {
		t.Fatalf("list instances failed: %v", err)
	}
	if len(instances) != 4 {
		t.Fatalf("expected instances for days 2-5 only, got %d", len(instances))
	}
	boundary := mustDate(t, "2024-03-05")
	for _, instance := range instances {
		if instance.RepeatTill == nil || !instance.RepeatTill.Equal(boundary) {
			t.Errorf("instance %s should carry the new boundary", instance.ID)
		}
	}

	// Generation past the boundary stays silent.
	created, err := env.generator.GenerateForDate(ctx, mustDate(t, "2024-03-11"))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if created != 0 {
		t.Errorf("no instance should be created past the boundary, got %d", created)
	}
}

func TestRecurrence_StopAndNullTill(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	template := seedDailyTemplate(t, env, userID, wsID)

	_, err := env.taskSvc.UpdateTask(ctx, userID, template.ID, dto.UpdateTaskRequest{
		RepeatTill: patch.Null[string](),
	})
	if !errors.Is(err, apperrors.ErrInvalidDate) {
		t.Errorf("null repeat_till should be rejected, got %v", err)
	}

	stopped, err := env.taskSvc.UpdateTask(ctx, userID, template.ID, dto.UpdateTaskRequest{
		RecurrenceAction: patch.Of("stop"),
	})
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if stopped.RecurrenceActive {
		t.Error("stopped template should be inactive")
	}
	if stopped.RecurrenceRule == nil {
		t.Error("stop must keep the rule for later reactivation")
	}
}

func TestRecurrence_DeleteFamily(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	template := seedDailyTemplate(t, env, userID, wsID)
	if _, err := env.generator.GenerateForDate(ctx, mustDate(t, "2024-03-02")); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	instances, _ := env.tasks.ListInstances(ctx, template.ID)
	if len(instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(instances))
	}

	// Deleting from the instance reaches the whole family.
	if err := env.taskSvc.DeleteTask(ctx, userID, instances[0].ID, true); err != nil {
		t.Fatalf("delete family failed: %v", err)
	}

	if _, err := env.tasks.FindByID(ctx, template.ID); !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("template should be gone, got %v", err)
	}
	if _, err := env.tasks.FindByID(ctx, instances[0].ID); !errors.Is(err, apperrors.ErrTaskNotFound) {
		t.Errorf("instance should be gone, got %v", err)
	}
}

func TestPlanService_ReviewWorkflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	memberID := uuid.NewString()
	supervisorID := uuid.NewString()
	env.seedMember(t, memberID, wsID, constants.RoleMember)
	env.seedMember(t, supervisorID, wsID, constants.RoleSupervisor)

	plan, err := env.planSvc.EnsurePlan(ctx, memberID, wsID, mustDate(t, "2024-01-10"))
	if err != nil {
		t.Fatalf("ensure plan failed: %v", err)
	}

	if _, err := env.planSvc.Review(ctx, supervisorID, plan.ID); !errors.Is(err, apperrors.ErrPlanNotSubmitted) {
		t.Errorf("reviewing an unsubmitted plan should fail, got %v", err)
	}

	if _, err := env.planSvc.Submit(ctx, supervisorID, plan.ID); !errors.Is(err, apperrors.ErrNotPlanOwner) {
		t.Errorf("only the owner may submit, got %v", err)
	}
	if _, err := env.planSvc.Submit(ctx, memberID, plan.ID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := env.planSvc.Review(ctx, memberID, plan.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("a member must not review, got %v", err)
	}

	ownPlan, err := env.planSvc.EnsurePlan(ctx, supervisorID, wsID, mustDate(t, "2024-01-10"))
	if err != nil {
		t.Fatalf("ensure own plan failed: %v", err)
	}
	if _, err := env.planSvc.Submit(ctx, supervisorID, ownPlan.ID); err != nil {
		t.Fatalf("submit own plan failed: %v", err)
	}
	if _, err := env.planSvc.Review(ctx, supervisorID, ownPlan.ID); !errors.Is(err, apperrors.ErrReviewOwnPlan) {
		t.Errorf("reviewing one's own plan should fail, got %v", err)
	}

	reviewed, err := env.planSvc.Review(ctx, supervisorID, plan.ID)
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if !reviewed.Reviewed {
		t.Error("plan should be marked reviewed")
	}
}

func TestPlanService_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	memberID := uuid.NewString()
	supervisorID := uuid.NewString()
	env.seedMember(t, memberID, wsID, constants.RoleMember)
	env.seedMember(t, supervisorID, wsID, constants.RoleSupervisor)

	date := mustDate(t, "2024-01-10")
	plan, err := env.planSvc.EnsurePlan(ctx, memberID, wsID, date)
	if err != nil {
		t.Fatalf("ensure plan failed: %v", err)
	}

	visible, err := env.planSvc.TeamPlans(ctx, supervisorID, wsID, date)
	if err != nil {
		t.Fatalf("team plans failed: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("supervisor should see the team-visible plan, got %d", len(visible))
	}

	if _, err := env.planSvc.SetVisibility(ctx, memberID, plan.ID, "private"); err != nil {
		t.Fatalf("set visibility failed: %v", err)
	}

	visible, err = env.planSvc.TeamPlans(ctx, supervisorID, wsID, date)
	if err != nil {
		t.Fatalf("team plans failed: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("private plans must be hidden from oversight, got %d", len(visible))
	}
	if _, _, err := env.planSvc.GetPlan(ctx, supervisorID, plan.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("private plan should not be readable by others, got %v", err)
	}
	if _, _, err := env.planSvc.GetPlan(ctx, memberID, plan.ID); err != nil {
		t.Errorf("the owner always sees the plan: %v", err)
	}

	// Members never see each other's plans through the team view.
	peerID := uuid.NewString()
	env.seedMember(t, peerID, wsID, constants.RoleMember)
	if _, err := env.planSvc.SetVisibility(ctx, memberID, plan.ID, "team"); err != nil {
		t.Fatalf("set visibility failed: %v", err)
	}
	visible, err = env.planSvc.TeamPlans(ctx, peerID, wsID, date)
	if err != nil {
		t.Fatalf("team plans failed: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("a plain member should only see their own plans, got %d", len(visible))
	}
}

func TestPlanService_CommentsPinToPlanTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	memberID := uuid.NewString()
	supervisorID := uuid.NewString()
	env.seedMember(t, memberID, wsID, constants.RoleMember)
	env.seedMember(t, supervisorID, wsID, constants.RoleSupervisor)

	task, err := env.taskSvc.CreateTask(ctx, memberID, dto.CreateTaskRequest{
		WorkspaceID: wsID,
		Title:       "Deploy",
		PlanDate:    strPtr("2024-01-10"),
	})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	idea, err := env.taskSvc.CreateTask(ctx, memberID, dto.CreateTaskRequest{
		WorkspaceID: wsID,
		Title:       "Unrelated idea",
	})
	if err != nil {
		t.Fatalf("create idea failed: %v", err)
	}

	_, err = env.planSvc.AddComment(ctx, supervisorID, *task.DailyPlanID, dto.CreateCommentRequest{
		TaskID: &idea.ID,
		Body:   "looks off",
	})
	if !errors.Is(err, apperrors.ErrTaskNotInPlan) {
		t.Errorf("comment pinned to a foreign task should fail, got %v", err)
	}

	if _, err := env.planSvc.AddComment(ctx, supervisorID, *task.DailyPlanID, dto.CreateCommentRequest{
		TaskID: &task.ID,
		Body:   "start with this one",
	}); err != nil {
		t.Fatalf("add comment failed: %v", err)
	}

	comments, err := env.planSvc.Comments(ctx, memberID, *task.DailyPlanID)
	if err != nil {
		t.Fatalf("list comments failed: %v", err)
	}
	if len(comments) != 1 || comments[0].AuthorID != supervisorID {
		t.Errorf("expected one supervisor comment, got %d", len(comments))
	}
}

func TestCategoryService_RenameCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	adminID := uuid.NewString()
	env.seedMember(t, adminID, wsID, constants.RoleAdmin)

	category, err := env.catSvc.Create(ctx, adminID, wsID, dto.CreateCategoryRequest{Name: "Work"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	if _, err := env.catSvc.Create(ctx, adminID, wsID, dto.CreateCategoryRequest{Name: "Work"}); !errors.Is(err, apperrors.ErrDuplicateCategory) {
		t.Errorf("duplicate name should be rejected, got %v", err)
	}

	task, err := env.taskSvc.CreateTask(ctx, adminID, dto.CreateTaskRequest{
		WorkspaceID: wsID,
		Title:       "Quarterly report",
		Category:    "Work",
	})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	if _, err := env.catSvc.Update(ctx, adminID, wsID, category.ID, dto.UpdateCategoryRequest{
		Name: strPtr("Deep Work"),
	}); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	renamed, err := env.tasks.FindByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("find task failed: %v", err)
	}
	if renamed.Category != "Deep Work" {
		t.Errorf("rename should cascade to tasks, got %q", renamed.Category)
	}

	memberID := uuid.NewString()
	env.seedMember(t, memberID, wsID, constants.RoleMember)
	if _, err := env.catSvc.Create(ctx, memberID, wsID, dto.CreateCategoryRequest{Name: "Mine"}); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("plain members must not manage categories, got %v", err)
	}
}

func TestWorkspaceService_TransferMovesContents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	orgID := uuid.NewString()
	fromID := env.seedWorkspace(t, &orgID)
	toID := env.seedWorkspace(t, &orgID)
	adminID := uuid.NewString()
	env.seedMember(t, adminID, fromID, constants.RoleAdmin)
	env.seedMember(t, adminID, toID, constants.RoleAdmin)

	task, err := env.taskSvc.CreateTask(ctx, adminID, dto.CreateTaskRequest{
		WorkspaceID: fromID,
		Title:       "Migrate me",
		PlanDate:    strPtr("2024-01-10"),
	})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	if err := env.wsSvc.Transfer(ctx, adminID, fromID, toID); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	moved, err := env.tasks.FindByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("find task failed: %v", err)
	}
	if moved.WorkspaceID != toID {
		t.Errorf("task should live in the target workspace, got %s", moved.WorkspaceID)
	}

	plan, err := env.plans.FindByID(ctx, *task.DailyPlanID)
	if err != nil {
		t.Fatalf("find plan failed: %v", err)
	}
	if plan.WorkspaceID != toID {
		t.Errorf("plan should live in the target workspace, got %s", plan.WorkspaceID)
	}
}

func TestTaskService_Subtasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wsID := env.seedWorkspace(t, nil)
	userID := uuid.NewString()
	env.seedMember(t, userID, wsID, constants.RoleMember)

	task, err := env.taskSvc.CreateTask(ctx, userID, dto.CreateTaskRequest{
		WorkspaceID: wsID,
		Title:       "Release",
		PlanDate:    strPtr("2024-01-10"),
	})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	subtask, err := env.taskSvc.CreateSubtask(ctx, userID, task.ID, dto.CreateSubtaskRequest{
		Title:            "Tag the build",
		StartTime:        strPtr("10:00"),
		EstimatedMinutes: intPtr(20),
	})
	if err != nil {
		t.Fatalf("create subtask failed: %v", err)
	}
	wantStart := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	if subtask.StartTime == nil || !subtask.StartTime.Equal(wantStart) {
		t.Errorf("subtask schedule should anchor to the parent plan date, got %v", subtask.StartTime)
	}

	updated, err := env.taskSvc.UpdateSubtask(ctx, userID, task.ID, subtask.ID, dto.UpdateSubtaskRequest{
		Done: patch.Of(true),
	})
	if err != nil {
		t.Fatalf("update subtask failed: %v", err)
	}
	if !updated.Done {
		t.Error("subtask should be done")
	}

	if err := env.taskSvc.DeleteSubtask(ctx, userID, task.ID, subtask.ID); err != nil {
		t.Fatalf("delete subtask failed: %v", err)
	}
	if _, err := env.taskSvc.UpdateSubtask(ctx, userID, task.ID, subtask.ID, dto.UpdateSubtaskRequest{}); !errors.Is(err, apperrors.ErrSubtaskNotFound) {
		t.Errorf("expected ErrSubtaskNotFound, got %v", err)
	}
}
