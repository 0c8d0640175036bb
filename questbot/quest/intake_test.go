package quest

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/questcord/questbot/questbot/collector"
	"github.com/questcord/questbot/questbot/database/models"
	"github.com/questcord/questbot/questbot/database/repositories"
)

type fakeBans struct {
	repositories.BanRepository
	banned map[string]bool
}

func (f *fakeBans) IsBanned(_ context.Context, discordID string) (bool, error) {
	return f.banned[discordID], nil
}

type fakeTasks struct {
	repositories.TaskRepository
	tasks    map[int64]*models.Task
	archived []int64
}

func (f *fakeTasks) Get(_ context.Context, id int64) (*models.Task, error) {
	task, ok := f.tasks[id]
	if !ok {
		return nil, repositories.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeTasks) GetActive(_ context.Context) ([]*models.Task, error) {
	var active []*models.Task
	for _, t := range f.tasks {
		if !t.Archived {
			active = append(active, t)
		}
	}
	return active, nil
}

func (f *fakeTasks) Archive(_ context.Context, id int64) error {
	f.archived = append(f.archived, id)
	if t, ok := f.tasks[id]; ok {
		t.Archived = true
	}
	return nil
}

type fakeSubs struct {
	repositories.SubmissionRepository
	counts   map[int64]int
	countErr error
	existing map[string]*models.Submission // "user:task"
	created  []*models.Submission
}

func (f *fakeSubs) CountDone(_ context.Context, taskID int64) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.counts[taskID], nil
}

func (f *fakeSubs) GetByUserAndTask(_ context.Context, userID string, taskID int64) (*models.Submission, error) {
	if sub, ok := f.existing[userID+":"+strconv.FormatInt(taskID, 10)]; ok {
		return sub, nil
	}
	return nil, repositories.ErrSubmissionNotFound
}

func (f *fakeSubs) Create(_ context.Context, sub *models.Submission) error {
	f.created = append(f.created, sub)
	f.counts[sub.TaskID]++
	return nil
}

type fakeUsers struct {
	repositories.UserRepository
	ensured []string
}

func (f *fakeUsers) Ensure(_ context.Context, discordID string) error {
	f.ensured = append(f.ensured, discordID)
	return nil
}

type fakeTransport struct {
	sent    []discord.MessageCreate
	edits   int
	deleted []snowflake.ID
}

func (f *fakeTransport) CreateMessage(_ snowflake.ID, messageCreate discord.MessageCreate, _ ...rest.RequestOpt) (*discord.Message, error) {
	f.sent = append(f.sent, messageCreate)
	return &discord.Message{}, nil
}

func (f *fakeTransport) UpdateMessage(_ snowflake.ID, _ snowflake.ID, _ discord.MessageUpdate, _ ...rest.RequestOpt) (*discord.Message, error) {
	f.edits++
	return &discord.Message{}, nil
}

func (f *fakeTransport) DeleteMessage(_ snowflake.ID, messageID snowflake.ID, _ ...rest.RequestOpt) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

type intakeFixture struct {
	svc       *IntakeService
	bans      *fakeBans
	tasks     *fakeTasks
	subs      *fakeSubs
	users     *fakeUsers
	transport *fakeTransport
	collector *collector.Manager
}

func newIntakeFixture() *intakeFixture {
	f := &intakeFixture{
		bans: &fakeBans{banned: map[string]bool{}},
		tasks: &fakeTasks{tasks: map[int64]*models.Task{
			1: {ID: 1, Title: "Like the post", Points: 100, MaxSubmissions: 5, Type: models.TaskTypeLike},
		}},
		subs:      &fakeSubs{counts: map[int64]int{}, existing: map[string]*models.Submission{}},
		users:     &fakeUsers{},
		transport: &fakeTransport{},
		collector: collector.New(),
	}
	board := NewBoardService(f.tasks, f.subs, f.transport)
	f.svc = NewIntakeService(
		f.users, f.tasks, f.subs, f.bans,
		NewCooldown(10*time.Second),
		f.collector, board,
		f.transport, f.transport,
		snowflake.ID(77), time.Second,
	)
	return f
}

var testBoard = Board{ChannelID: 10, MessageID: 11, OwnerID: 12}

func denyReason(t *testing.T, err error) DenyReason {
	t.Helper()
	var deny *DenyError
	if !errors.As(err, &deny) {
		t.Fatalf("err = %v, want DenyError", err)
	}
	return deny.Reason
}

func TestBeginAllowsFreshClick(t *testing.T) {
	f := newIntakeFixture()

	task, err := f.svc.Begin(context.Background(), "user1", 1, testBoard)
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if task.ID != 1 {
		t.Errorf("task ID = %d, want 1", task.ID)
	}
}

func TestBeginDeniesBannedUser(t *testing.T) {
	f := newIntakeFixture()
	f.bans.banned["user1"] = true

	_, err := f.svc.Begin(context.Background(), "user1", 1, testBoard)
	if got := denyReason(t, err); got != DenyBanned {
		t.Errorf("reason = %v, want DenyBanned", got)
	}
}

func TestBeginDeniesDoubleClick(t *testing.T) {
	f := newIntakeFixture()

	if _, err := f.svc.Begin(context.Background(), "user1", 1, testBoard); err != nil {
		t.Fatalf("first click: %v", err)
	}
	_, err := f.svc.Begin(context.Background(), "user1", 1, testBoard)
	if got := denyReason(t, err); got != DenyCooldown {
		t.Errorf("reason = %v, want DenyCooldown", got)
	}
}

func TestBeginArchivesFullTask(t *testing.T) {
	f := newIntakeFixture()
	f.subs.counts[1] = 5 // at capacity

	_, err := f.svc.Begin(context.Background(), "user1", 1, testBoard)
	if got := denyReason(t, err); got != DenyFull {
		t.Errorf("reason = %v, want DenyFull", got)
	}
	if len(f.tasks.archived) != 1 || f.tasks.archived[0] != 1 {
		t.Errorf("archived = %v, want [1]", f.tasks.archived)
	}
	if f.transport.edits == 0 {
		t.Error("board should be refreshed after archiving")
	}
}

func TestBeginDeniesDuplicateSubmission(t *testing.T) {
	f := newIntakeFixture()
	f.subs.existing["user1:1"] = &models.Submission{Status: models.SubmissionPending}

	_, err := f.svc.Begin(context.Background(), "user1", 1, testBoard)
	var deny *DenyError
	if !errors.As(err, &deny) {
		t.Fatalf("err = %v, want DenyError", err)
	}
	if deny.Reason != DenyDuplicate {
		t.Errorf("reason = %v, want DenyDuplicate", deny.Reason)
	}
	if deny.Status != models.SubmissionPending {
		t.Errorf("status = %q, want pending", deny.Status)
	}
}

func TestAwaitProofConsumesLink(t *testing.T) {
	f := newIntakeFixture()
	user, channel := snowflake.ID(1), snowflake.ID(10)

	type result struct {
		proof string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		proof, err := f.svc.AwaitProof(context.Background(), user, channel)
		done <- result{proof, err}
	}()
	for i := 0; i < 100 && f.collector.Pending() == 0; i++ {
		time.Sleep(time.Millisecond)
	}

	// Chatter without a link is ignored.
	f.collector.Dispatch(discord.Message{
		ID: 500, ChannelID: channel,
		Author: discord.User{ID: user}, Content: "one sec",
	})
	f.collector.Dispatch(discord.Message{
		ID: 501, ChannelID: channel,
		Author: discord.User{ID: user}, Content: "https://example.com/proof  ",
	})

	res := <-done
	if res.err != nil {
		t.Fatalf("AwaitProof returned error: %v", res.err)
	}
	if res.proof != "https://example.com/proof" {
		t.Errorf("proof = %q, want trimmed link", res.proof)
	}
	if len(f.transport.deleted) != 1 || f.transport.deleted[0] != snowflake.ID(501) {
		t.Errorf("deleted = %v, want the proof message", f.transport.deleted)
	}
}

func TestAwaitProofTimeout(t *testing.T) {
	f := newIntakeFixture()
	f.svc.proofTimeout = 10 * time.Millisecond

	_, err := f.svc.AwaitProof(context.Background(), 1, 10)
	if got := denyReason(t, err); got != DenyTimeout {
		t.Errorf("reason = %v, want DenyTimeout", got)
	}
}

func TestRecordWritesSubmissionAndBroadcasts(t *testing.T) {
	f := newIntakeFixture()
	task := f.tasks.tasks[1]

	slotsLeft, err := f.svc.Record(context.Background(), "user1", task, "https://example.com/proof", testBoard)
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if slotsLeft != 4 {
		t.Errorf("slotsLeft = %d, want 4", slotsLeft)
	}
	if len(f.users.ensured) != 1 || f.users.ensured[0] != "user1" {
		t.Errorf("ensured = %v, want [user1]", f.users.ensured)
	}
	if len(f.subs.created) != 1 {
		t.Fatalf("created %d submissions, want 1", len(f.subs.created))
	}
	sub := f.subs.created[0]
	if sub.UserID != "user1" || sub.TaskID != 1 || sub.Proof != "https://example.com/proof" {
		t.Errorf("unexpected submission: %+v", sub)
	}
	if len(f.transport.sent) != 1 {
		t.Fatalf("sent %d broadcasts, want 1", len(f.transport.sent))
	}
	if f.transport.edits == 0 {
		t.Error("board should be refreshed after recording")
	}
}

func TestRecordSkipsBroadcastWhenCountFails(t *testing.T) {
	f := newIntakeFixture()
	f.subs.countErr = errors.New("connection reset")
	task := f.tasks.tasks[1]

	slotsLeft, err := f.svc.Record(context.Background(), "user1", task, "https://example.com/proof", testBoard)
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if slotsLeft != -1 {
		t.Errorf("slotsLeft = %d, want -1 when the count is unknown", slotsLeft)
	}
	if len(f.subs.created) != 1 {
		t.Fatalf("created %d submissions, want 1", len(f.subs.created))
	}
	if len(f.transport.sent) != 0 {
		t.Errorf("sent %d broadcasts, want none without a real count", len(f.transport.sent))
	}
}

func TestCooldownMessageMentionsSeconds(t *testing.T) {
	for sec := 1; sec <= 12; sec++ {
		msg := CooldownMessage("@user", "Like the post", time.Duration(sec)*time.Second)
		if !strings.Contains(msg, strconv.Itoa(sec)) {
			t.Errorf("message for %ds does not state the wait: %q", sec, msg)
		}
	}
}

func TestCooldownMessageFloorsToOneSecond(t *testing.T) {
	msg := CooldownMessage("@user", "Like the post", 200*time.Millisecond)
	if !strings.Contains(msg, "1") {
		t.Errorf("sub-second remainder should read as 1s: %q", msg)
	}
}
