package service

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/user-directory/internal/cache"
	"github.com/spec-kit/user-directory/internal/domain"
	"github.com/spec-kit/user-directory/internal/events"
	"github.com/spec-kit/user-directory/internal/repository"
)

// DefaultListingTTL is the lifetime of a cached listing page.
var DefaultListingTTL = cache.TTL{Absolute: 5 * time.Minute, Sliding: 2 * time.Minute}

// UserService coordinates directory reads, writes and the listing cache.
type UserService struct {
	users      repository.UserRepository
	cache      *cache.QueryCache
	ttl        cache.TTL
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Cache      *cache.QueryCache
	CacheTTL   cache.TTL
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	ttl := deps.CacheTTL
	if ttl.Absolute <= 0 || ttl.Sliding <= 0 {
		ttl = DefaultListingTTL
	}
	qc := deps.Cache
	if qc == nil {
		qc = cache.NewQueryCache()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		cache:      qc,
		ttl:        ttl,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns one page of users matching shape, served from cache when possible.
func (s *UserService) List(ctx context.Context, shape domain.QueryShape) (domain.PagedResult, error) {
	if cached, ok := s.cache.Get(shape); ok {
		return cached, nil
	}

	gen := s.cache.Generation()
	users, err := s.users.List(ctx)
	if err != nil {
		return domain.PagedResult{}, err
	}

	result := runQuery(users, shape)
	if !s.cache.PutIfCurrent(gen, shape, result, s.ttl) {
		s.logger.Debug("listing computed across an invalidation; not cached")
	}
	return result, nil
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id int) (domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create adds a user and invalidates cached listings.
func (s *UserService) Create(ctx context.Context, actor *domain.Principal, changes domain.UserChanges) (domain.User, error) {
	user, err := s.users.Create(ctx, changes)
	if err != nil {
		return domain.User{}, err
	}
	s.afterMutation(ctx, events.EventUserCreated, actor, user)
	return user, nil
}

// Update replaces the writable fields of a user and invalidates cached listings.
func (s *UserService) Update(ctx context.Context, actor *domain.Principal, id int, changes domain.UserChanges) (domain.User, error) {
	user, err := s.users.Update(ctx, id, changes)
	if err != nil {
		return domain.User{}, err
	}
	s.afterMutation(ctx, events.EventUserUpdated, actor, user)
	return user, nil
}

// Delete removes a user and invalidates cached listings.
func (s *UserService) Delete(ctx context.Context, actor *domain.Principal, id int) (domain.User, error) {
	user, err := s.users.Delete(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	s.afterMutation(ctx, events.EventUserDeleted, actor, user)
	return user, nil
}

func (s *UserService) afterMutation(ctx context.Context, eventType events.EventType, actor *domain.Principal, user domain.User) {
	s.cache.InvalidateAll()

	if s.dispatcher == nil {
		return
	}
	var by events.Actor
	if actor != nil {
		by = events.Actor{UserID: actor.UserID, UserName: actor.UserName}
	}
	event := events.NewUserEvent(eventType, user.ID, by, events.UserChange{Email: user.Email, IsActive: user.IsActive})
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("user event handlers failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

// runQuery filters, sorts and paginates users. users must be in collection order.
func runQuery(users []domain.User, shape domain.QueryShape) domain.PagedResult {
	filtered := make([]domain.User, 0, len(users))
	term := strings.ToLower(strings.TrimSpace(shape.Search))
	for _, u := range users {
		if term != "" && !matchesSearch(u, term) {
			continue
		}
		if shape.IsActive != nil && u.IsActive != *shape.IsActive {
			continue
		}
		filtered = append(filtered, u)
	}

	compare := comparator(shape.SortBy)
	if shape.SortOrder == domain.SortDesc {
		asc := compare
		compare = func(a, b domain.User) int { return asc(b, a) }
	}
	slices.SortStableFunc(filtered, compare)

	result := domain.PagedResult{
		Data:       []domain.User{},
		TotalCount: len(filtered),
		Page:       shape.Page,
		PageSize:   shape.PageSize,
	}
	if shape.Page < 1 || shape.PageSize < 1 {
		return result
	}
	// Compare page numbers before multiplying so huge pages cannot wrap.
	pages := len(filtered) / shape.PageSize
	if len(filtered)%shape.PageSize != 0 {
		pages++
	}
	if shape.Page > pages {
		return result
	}
	start := (shape.Page - 1) * shape.PageSize
	end := min(start+shape.PageSize, len(filtered))
	result.Data = append(result.Data, filtered[start:end]...)
	return result
}

func matchesSearch(u domain.User, term string) bool {
	return strings.Contains(strings.ToLower(u.FirstName), term) ||
		strings.Contains(strings.ToLower(u.LastName), term) ||
		strings.Contains(strings.ToLower(u.Email), term)
}

func comparator(field domain.SortField) func(a, b domain.User) int {
	folded := func(get func(domain.User) string) func(a, b domain.User) int {
		return func(a, b domain.User) int {
			return cmp.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
		}
	}
	switch field {
	case domain.SortByFirstName:
		return folded(func(u domain.User) string { return u.FirstName })
	case domain.SortByLastName:
		return folded(func(u domain.User) string { return u.LastName })
	case domain.SortByEmail:
		return folded(func(u domain.User) string { return u.Email })
	default:
		return func(a, b domain.User) int { return a.DateCreated.Compare(b.DateCreated) }
	}
}
