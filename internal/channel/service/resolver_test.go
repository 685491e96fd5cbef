package service

import (
	"context"
	"errors"
	"testing"
	"time"

	channeldomain "dm-relay/backend/internal/channel/domain"
	channelrepository "dm-relay/backend/internal/channel/repository"
	messagedomain "dm-relay/backend/internal/message/domain"
	userdomain "dm-relay/backend/internal/user/domain"
)

type mockUserRepository struct {
	byName map[string]*userdomain.User
	err    error
}

func (m *mockUserRepository) GetByID(context.Context, int64) (*userdomain.User, error) {
	return nil, nil
}

func (m *mockUserRepository) GetByName(_ context.Context, userName string) (*userdomain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byName[userName], nil
}

func (m *mockUserRepository) List(context.Context) ([]*userdomain.User, error) { return nil, nil }

func (m *mockUserRepository) Create(context.Context, string, time.Time) (*userdomain.User, error) {
	return nil, nil
}

func (m *mockUserRepository) UpsertHeartbeat(context.Context, int64, string, time.Time) (*userdomain.User, error) {
	return nil, nil
}

type mockChannelRepository struct {
	existing   *channeldomain.Channel
	createErr  error
	created    *channeldomain.Channel
	createdMsg *messagedomain.Message
	createArgs []channelrepository.CreateDirectArgs
	// raceWinner is returned by GetDirectByPair after a CreateDirect call
	// failed with ErrPairExists.
	raceWinner *channeldomain.Channel
	raced      bool
}

func (m *mockChannelRepository) GetDirectByPair(context.Context, int64, int64) (*channeldomain.Channel, error) {
	if m.raced {
		return m.raceWinner, nil
	}
	return m.existing, nil
}

func (m *mockChannelRepository) CreateDirect(_ context.Context, arg channelrepository.CreateDirectArgs) (*channeldomain.Channel, *messagedomain.Message, error) {
	m.createArgs = append(m.createArgs, arg)
	if m.createErr != nil {
		if errors.Is(m.createErr, channelrepository.ErrPairExists) {
			m.raced = true
		}
		return nil, nil, m.createErr
	}
	return m.created, m.createdMsg, nil
}

type mockMessageRepository struct {
	recent []*messagedomain.Message
	err    error
}

func (m *mockMessageRepository) Create(context.Context, int64, int64, string, time.Time) (*messagedomain.Message, error) {
	return nil, nil
}

func (m *mockMessageRepository) ListRecentByChannel(context.Context, int64, int32) ([]*messagedomain.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.recent, nil
}

type mockBroadcaster struct {
	calls []broadcastCall
}

type broadcastCall struct {
	channelID  int64
	members    []int64
	senderID   int64
	senderName string
	body       string
}

func (m *mockBroadcaster) Broadcast(_ context.Context, channelID int64, members []int64, senderID int64, senderName, body string) int {
	m.calls = append(m.calls, broadcastCall{channelID, members, senderID, senderName, body})
	return len(members)
}

func twoUsers() *mockUserRepository {
	return &mockUserRepository{byName: map[string]*userdomain.User{
		"vijay":  {ID: 1, UserName: "vijay"},
		"suriya": {ID: 2, UserName: "suriya"},
	}}
}

func TestResolveOrCreate_CreatesOnFirstContact(t *testing.T) {
	channels := &mockChannelRepository{
		created:    &channeldomain.Channel{ChannelID: 10, ChannelType: channeldomain.ChannelTypeDirect, ChannelName: "vijay_suriya"},
		createdMsg: &messagedomain.Message{MessageID: 100, SenderID: 1, ChannelID: 10, Msg: "channel created b/w you and suriya"},
	}
	broadcaster := &mockBroadcaster{}
	r := NewResolver(twoUsers(), channels, &mockMessageRepository{}, broadcaster)

	res, err := r.ResolveOrCreate(context.Background(), "vijay", "suriya")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if !res.Created {
		t.Fatal("resolution should be tagged created")
	}
	if res.ChannelID != 10 {
		t.Errorf("channel id = %d, want 10", res.ChannelID)
	}
	if res.SystemMessage == nil || res.SystemMessage.Msg != "channel created b/w you and suriya" {
		t.Errorf("system message = %+v", res.SystemMessage)
	}

	if len(channels.createArgs) != 1 {
		t.Fatalf("CreateDirect called %d times, want 1", len(channels.createArgs))
	}
	arg := channels.createArgs[0]
	if arg.ChannelName != "vijay_suriya" {
		t.Errorf("channel name = %q, want vijay_suriya", arg.ChannelName)
	}
	if arg.SystemMsg != "channel created b/w you and suriya" {
		t.Errorf("system msg = %q", arg.SystemMsg)
	}

	if len(broadcaster.calls) != 1 {
		t.Fatalf("broadcast called %d times, want 1", len(broadcaster.calls))
	}
	call := broadcaster.calls[0]
	if call.senderID != 1 || len(call.members) != 1 || call.members[0] != 2 {
		t.Errorf("broadcast call = %+v, want receiver 2 only", call)
	}
	if call.body != "channel created b/w you and suriya" || call.senderName != "vijay" {
		t.Errorf("broadcast payload parts = %q from %q", call.body, call.senderName)
	}
}

func TestResolveOrCreate_ExistingReturnsHistory(t *testing.T) {
	channels := &mockChannelRepository{
		existing: &channeldomain.Channel{ChannelID: 10},
	}
	messages := &mockMessageRepository{recent: []*messagedomain.Message{
		{MessageID: 3, ChannelID: 10, Msg: "latest"},
		{MessageID: 2, ChannelID: 10, Msg: "older"},
	}}
	broadcaster := &mockBroadcaster{}
	r := NewResolver(twoUsers(), channels, messages, broadcaster)

	res, err := r.ResolveOrCreate(context.Background(), "vijay", "suriya")
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if res.Created {
		t.Fatal("resolution should not be tagged created")
	}
	if res.ChannelID != 10 {
		t.Errorf("channel id = %d, want 10", res.ChannelID)
	}
	if len(res.History) != 2 || res.History[0].Msg != "latest" {
		t.Errorf("history = %+v, want newest first", res.History)
	}
	if len(channels.createArgs) != 0 {
		t.Error("CreateDirect should not run for an existing channel")
	}
	if len(broadcaster.calls) != 0 {
		t.Error("no broadcast for an existing channel")
	}
}

func TestResolveOrCreate_SelfChannelRejected(t *testing.T) {
	users := twoUsers()
	channels := &mockChannelRepository{}
	r := NewResolver(users, channels, &mockMessageRepository{}, nil)

	_, err := r.ResolveOrCreate(context.Background(), "vijay", "vijay")
	if !errors.Is(err, ErrSelfChannel) {
		t.Fatalf("error = %v, want ErrSelfChannel", err)
	}
	if len(channels.createArgs) != 0 {
		t.Error("self resolution must not touch storage")
	}
}

func TestResolveOrCreate_UnknownUser(t *testing.T) {
	r := NewResolver(twoUsers(), &mockChannelRepository{}, &mockMessageRepository{}, nil)

	_, err := r.ResolveOrCreate(context.Background(), "vijay", "nobody")
	var unknown *UnknownUserError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownUserError", err)
	}
	if unknown.UserName != "nobody" {
		t.Errorf("unknown user = %q, want nobody", unknown.UserName)
	}
}

func TestResolveOrCreate_LostRaceDegradesToLookup(t *testing.T) {
	channels := &mockChannelRepository{
		createErr:  channelrepository.ErrPairExists,
		raceWinner: &channeldomain.Channel{ChannelID: 77},
	}
	messages := &mockMessageRepository{recent: []*messagedomain.Message{
		{MessageID: 1, ChannelID: 77, Msg: "channel created b/w you and suriya"},
	}}
	r := NewResolver(twoUsers(), channels, messages, &mockBroadcaster{})

	res, err := r.ResolveOrCreate(context.Background(), "vijay", "suriya")
	if err != nil {
		t.Fatalf("ResolveOrCreate after lost race: %v", err)
	}
	if res.Created {
		t.Error("losing the race must resolve as existing")
	}
	if res.ChannelID != 77 {
		t.Errorf("channel id = %d, want the winner's 77", res.ChannelID)
	}
}

func TestResolveOrCreate_StorageFailure(t *testing.T) {
	users := twoUsers()
	users.err = errors.New("db down")
	r := NewResolver(users, &mockChannelRepository{}, &mockMessageRepository{}, nil)

	if _, err := r.ResolveOrCreate(context.Background(), "vijay", "suriya"); err == nil {
		t.Fatal("expected storage error to propagate")
	}
}
