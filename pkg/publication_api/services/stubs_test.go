package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/notify"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/listtypes"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
)

const testListTypeYAML = `
listTypes:
  - id: civil-and-family-daily-cause-list
    name: CIVIL_AND_FAMILY_DAILY_CAUSE_LIST
    friendlyName: Civil and Family Daily Cause List
    allowedProvenances: [MANUAL_UPLOAD, XHIBIT]
    searchFields:
      caseNumber: caseNumber
      caseName: caseName
    schema:
      type: object
      required: [document]
      properties:
        document:
          type: object
          required: [publicationDate]
          properties:
            publicationDate:
              type: string
  - id: crown-daily-list
    name: CROWN_DAILY_LIST
    friendlyName: Crown Court Daily List
    searchFields:
      caseNumber: caseNumber
  - id: no-search-fields-list
    name: NO_SEARCH_FIELDS_LIST
    friendlyName: List without search fields
`

func testListTypes() *listtypes.Config {
	cfg, err := listtypes.Parse([]byte(testListTypeYAML))
	if err != nil {
		panic(err)
	}
	return cfg
}

// stubLocationRepo implements repositories.LocationRepository for testing
type stubLocationRepo struct {
	getByID func(ctx context.Context, id string) (*models.Location, error)
	exists  func(ctx context.Context, id string) (bool, error)
}

func (s *stubLocationRepo) GetByID(ctx context.Context, id string) (*models.Location, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return &models.Location{LocationID: id, Name: "Test Court"}, nil
}
func (s *stubLocationRepo) Exists(ctx context.Context, id string) (bool, error) {
	if s.exists != nil {
		return s.exists(ctx, id)
	}
	return true, nil
}
func (s *stubLocationRepo) All(ctx context.Context) ([]models.Location, error) { return nil, nil }
func (s *stubLocationRepo) Upsert(ctx context.Context, locations []models.Location) error {
	return nil
}

// stubSearchRepo implements repositories.SearchRepository for testing
type stubSearchRepo struct {
	mu         sync.Mutex
	replaced   map[string][]models.ArtefactSearch
	deletedFor []string
	replace    func(ctx context.Context, artefactID string, rows []models.ArtefactSearch) error
	findBy     func(ctx context.Context, artefactID string) ([]models.ArtefactSearch, error)
}

func (s *stubSearchRepo) ReplaceForArtefact(ctx context.Context, artefactID string, rows []models.ArtefactSearch) error {
	if s.replace != nil {
		return s.replace(ctx, artefactID, rows)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaced == nil {
		s.replaced = map[string][]models.ArtefactSearch{}
	}
	s.replaced[artefactID] = rows
	return nil
}
func (s *stubSearchRepo) FindByArtefact(ctx context.Context, artefactID string) ([]models.ArtefactSearch, error) {
	if s.findBy != nil {
		return s.findBy(ctx, artefactID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaced[artefactID], nil
}
func (s *stubSearchRepo) Search(ctx context.Context, params models.CaseSearchParams) ([]models.ArtefactSearch, error) {
	return nil, nil
}
func (s *stubSearchRepo) DeleteForArtefacts(ctx context.Context, artefactIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedFor = append(s.deletedFor, artefactIDs...)
	return nil
}

// stubSubscriptionRepo implements repositories.SubscriptionRepository
type stubSubscriptionRepo struct {
	findByLocation func(ctx context.Context, locationID string) ([]models.Subscription, error)
	findByCases    func(ctx context.Context, numbers, names []string) ([]models.Subscription, error)
	findByListType func(ctx context.Context, listTypeID, language string) ([]models.SubscriptionListType, error)
	save           func(ctx context.Context, sub *models.Subscription) error
	get            func(ctx context.Context, id string) (*models.Subscription, error)
	getListType    func(ctx context.Context, id string) (*models.SubscriptionListType, error)
	countByUser    func(ctx context.Context, userID string) (int64, error)
	existsTarget   func(ctx context.Context, userID, searchType, searchValue string) (bool, error)
}

func (s *stubSubscriptionRepo) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	if s.save != nil {
		return s.save(ctx, sub)
	}
	return nil
}
func (s *stubSubscriptionRepo) DeleteSubscription(ctx context.Context, id string) error { return nil }
func (s *stubSubscriptionRepo) GetSubscription(ctx context.Context, id string) (*models.Subscription, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return nil, nil
}
func (s *stubSubscriptionRepo) FindByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	return nil, nil
}
func (s *stubSubscriptionRepo) FindByLocation(ctx context.Context, locationID string) ([]models.Subscription, error) {
	if s.findByLocation != nil {
		return s.findByLocation(ctx, locationID)
	}
	return nil, nil
}
func (s *stubSubscriptionRepo) FindByCases(ctx context.Context, numbers, names []string) ([]models.Subscription, error) {
	if s.findByCases != nil {
		return s.findByCases(ctx, numbers, names)
	}
	return nil, nil
}
func (s *stubSubscriptionRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	if s.countByUser != nil {
		return s.countByUser(ctx, userID)
	}
	return 0, nil
}
func (s *stubSubscriptionRepo) ExistsForTarget(ctx context.Context, userID, searchType, searchValue string) (bool, error) {
	if s.existsTarget != nil {
		return s.existsTarget(ctx, userID, searchType, searchValue)
	}
	return false, nil
}

func (s *stubSubscriptionRepo) SaveListTypeSubscription(ctx context.Context, sub *models.SubscriptionListType) error {
	return nil
}
func (s *stubSubscriptionRepo) DeleteListTypeSubscription(ctx context.Context, id string) error {
	return nil
}
func (s *stubSubscriptionRepo) GetListTypeSubscription(ctx context.Context, id string) (*models.SubscriptionListType, error) {
	if s.getListType != nil {
		return s.getListType(ctx, id)
	}
	return nil, nil
}
func (s *stubSubscriptionRepo) FindListTypeByUser(ctx context.Context, userID string) ([]models.SubscriptionListType, error) {
	return nil, nil
}
func (s *stubSubscriptionRepo) FindByListType(ctx context.Context, listTypeID, language string) ([]models.SubscriptionListType, error) {
	if s.findByListType != nil {
		return s.findByListType(ctx, listTypeID, language)
	}
	return nil, nil
}
func (s *stubSubscriptionRepo) CountListTypeByUser(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}
func (s *stubSubscriptionRepo) ExistsForListType(ctx context.Context, userID, listTypeID, language string) (bool, error) {
	return false, nil
}

// stubNotificationRepo records saved notification rows.
type stubNotificationRepo struct {
	mu    sync.Mutex
	saved []models.Notification
}

func (s *stubNotificationRepo) Save(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, *n)
	return nil
}
func (s *stubNotificationRepo) FindByArtefact(ctx context.Context, artefactID string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.saved {
		if n.ArtefactID == artefactID {
			out = append(out, n)
		}
	}
	return out, nil
}

// stubArtefactRepo implements repositories.ArtefactRepository
type stubArtefactRepo struct {
	mu            sync.Mutex
	saved         []models.Artefact
	markedExpired []string
	getByID       func(ctx context.Context, id string) (*models.Artefact, error)
	saveFunc      func(ctx context.Context, artefact *models.Artefact) error
	findExpired   func(ctx context.Context, now time.Time) ([]models.Artefact, error)
}

func (s *stubArtefactRepo) Save(ctx context.Context, artefact *models.Artefact) error {
	if s.saveFunc != nil {
		return s.saveFunc(ctx, artefact)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, *artefact)
	return nil
}
func (s *stubArtefactRepo) GetByID(ctx context.Context, id string) (*models.Artefact, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.saved {
		if s.saved[i].ArtefactID == id {
			a := s.saved[i]
			return &a, nil
		}
	}
	return nil, nil
}
func (s *stubArtefactRepo) FindByLocation(ctx context.Context, locationID string, now time.Time) ([]models.Artefact, error) {
	return nil, nil
}
func (s *stubArtefactRepo) FindExpired(ctx context.Context, now time.Time) ([]models.Artefact, error) {
	if s.findExpired != nil {
		return s.findExpired(ctx, now)
	}
	return nil, nil
}
func (s *stubArtefactRepo) MarkExpired(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markedExpired = append(s.markedExpired, ids...)
	return nil
}

// stubIngestionLogRepo records appended log entries.
type stubIngestionLogRepo struct {
	mu      sync.Mutex
	entries []models.IngestionLog
}

func (s *stubIngestionLogRepo) Append(ctx context.Context, entry *models.IngestionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}
func (s *stubIngestionLogRepo) FindRecent(ctx context.Context, limit int) ([]models.IngestionLog, error) {
	return nil, nil
}

// fakeSender counts send attempts and fails on demand.
type fakeSender struct {
	mu       sync.Mutex
	calls    int
	failures int // fail this many calls before succeeding
	err      error
}

func (f *fakeSender) SendEmail(ctx context.Context, req notify.EmailRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil && (f.failures <= 0 || f.calls <= f.failures) {
		return "", f.err
	}
	return "notify-id-1", nil
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
