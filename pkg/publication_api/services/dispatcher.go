package services

import (
	"context"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/notify"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/helpers/util"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/listtypes"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/models"
	"github.com/opencourt-uk/publication-service/pkg/publication_api/repositories"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DispatcherConfig carries the tunables of the notification fan-out. The
// retry count and backoff base are deliberately configuration, not
// constants.
type DispatcherConfig struct {
	TemplateID     string
	MaxRetries     uint64
	RetryBaseDelay time.Duration
	MaxConcurrent  int64
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = time.Second
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 8
	}
	return c
}

// DispatchRequest identifies the artefact being fanned out.
type DispatchRequest struct {
	ArtefactID  string
	LocationID  string
	ListTypeID  string
	Language    string
	ContentDate time.Time
	PDFPath     string
}

// Dispatcher sends one email per matched subscriber through the
// notification provider. Individual failures never abort the batch; each
// recipient gets a Notification row recording the outcome.
type Dispatcher struct {
	subscriptions repositories.SubscriptionRepository
	notifications repositories.NotificationRepository
	locations     repositories.LocationRepository
	search        repositories.SearchRepository
	listTypes     *listtypes.Config
	sender        notify.EmailSender
	cfg           DispatcherConfig
}

func NewDispatcher(
	subscriptions repositories.SubscriptionRepository,
	notifications repositories.NotificationRepository,
	locations repositories.LocationRepository,
	search repositories.SearchRepository,
	listTypes *listtypes.Config,
	sender notify.EmailSender,
	cfg DispatcherConfig,
) *Dispatcher {
	return &Dispatcher{
		subscriptions: subscriptions,
		notifications: notifications,
		locations:     locations,
		search:        search,
		listTypes:     listTypes,
		sender:        sender,
		cfg:           cfg.withDefaults(),
	}
}

// Dispatch resolves all matching subscribers and sends each at most one
// email. An unresolvable location aborts the whole dispatch: no partial
// send happens without a valid location.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) models.DispatchResult {
	location, err := d.locations.GetByID(ctx, req.LocationID)
	if err != nil || location == nil {
		log.Printf("[notify] abort artefact=%s: location %s not resolved (err=%v)", req.ArtefactID, req.LocationID, err)
		return models.DispatchResult{Success: false}
	}

	recipients, cases := d.resolveRecipients(ctx, req)
	result := models.DispatchResult{Success: true, TotalSubscriptions: len(recipients)}
	if len(recipients) == 0 {
		log.Printf("[notify] artefact=%s: no subscriptions matched", req.ArtefactID)
		return result
	}

	listTypeName := req.ListTypeID
	if lt := d.listTypes.ByID(req.ListTypeID); lt != nil {
		listTypeName = lt.FriendlyName
	}

	var (
		mu         sync.Mutex
		failureLog []string
	)
	sem := semaphore.NewWeighted(d.cfg.MaxConcurrent)
	g, gctx := errgroup.WithContext(ctx)

	for _, sub := range recipients {
		sub := sub

		if err := sem.Acquire(gctx, 1); err != nil {
			log.Printf("[notify] artefact=%s: fan-out interrupted: %v", req.ArtefactID, err)
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			outcome := d.sendOne(gctx, req, sub, location.Name, listTypeName, cases)

			mu.Lock()
			switch outcome.Status {
			case models.NotificationSent:
				result.Sent++
			case models.NotificationSkipped:
				result.Skipped++
			default:
				result.Failed++
				failureLog = append(failureLog, outcome.ErrorMessage)
			}
			mu.Unlock()

			if err := d.notifications.Save(ctx, outcome); err != nil {
				log.Printf("[notify] save notification failed artefact=%s user=%s: %v", req.ArtefactID, sub.UserID, err)
			}
			// Send failures are recorded, not returned; one bad address must
			// not stop delivery to the rest.
			return nil
		})
	}
	_ = g.Wait()

	if len(failureLog) > 0 {
		log.Printf("[notify] artefact=%s failures: %s", req.ArtefactID, util.RedactEmails(strings.Join(failureLog, "; ")))
	}
	log.Printf("[notify] artefact=%s total=%d sent=%d failed=%d skipped=%d",
		req.ArtefactID, result.TotalSubscriptions, result.Sent, result.Failed, result.Skipped)
	return result
}

// resolveRecipients merges the location, case and list-type match
// strategies, de-duplicated by user id so a multiply-subscribed user
// receives one email.
func (d *Dispatcher) resolveRecipients(ctx context.Context, req DispatchRequest) ([]models.Subscription, []string) {
	byUser := make(map[string]models.Subscription)

	locationSubs, err := d.subscriptions.FindByLocation(ctx, req.LocationID)
	if err != nil {
		log.Printf("[notify] artefact=%s: location subscription lookup failed: %v", req.ArtefactID, err)
	}
	for _, sub := range locationSubs {
		if _, seen := byUser[sub.UserID]; !seen {
			byUser[sub.UserID] = sub
		}
	}

	var cases []string
	rows, err := d.search.FindByArtefact(ctx, req.ArtefactID)
	if err != nil {
		log.Printf("[notify] artefact=%s: search row lookup failed: %v", req.ArtefactID, err)
	}
	var numbers, names []string
	for _, row := range rows {
		if row.CaseNumber != "" {
			numbers = append(numbers, row.CaseNumber)
			cases = append(cases, row.CaseNumber)
		}
		if row.CaseName != "" {
			names = append(names, row.CaseName)
			if row.CaseNumber == "" {
				cases = append(cases, row.CaseName)
			}
		}
	}

	caseSubs, err := d.subscriptions.FindByCases(ctx, numbers, names)
	if err != nil {
		log.Printf("[notify] artefact=%s: case subscription lookup failed: %v", req.ArtefactID, err)
	}
	for _, sub := range caseSubs {
		if _, seen := byUser[sub.UserID]; !seen {
			byUser[sub.UserID] = sub
		}
	}

	listTypeSubs, err := d.subscriptions.FindByListType(ctx, req.ListTypeID, req.Language)
	if err != nil {
		log.Printf("[notify] artefact=%s: list type subscription lookup failed: %v", req.ArtefactID, err)
	}
	for _, sub := range listTypeSubs {
		if _, seen := byUser[sub.UserID]; !seen {
			byUser[sub.UserID] = models.Subscription{
				ID:     sub.ID,
				UserID: sub.UserID,
				Email:  sub.Email,
			}
		}
	}

	recipients := make([]models.Subscription, 0, len(byUser))
	for _, sub := range byUser {
		recipients = append(recipients, sub)
	}
	sort.Slice(recipients, func(i, j int) bool { return recipients[i].UserID < recipients[j].UserID })
	return recipients, cases
}

func (d *Dispatcher) sendOne(ctx context.Context, req DispatchRequest, sub models.Subscription, locationName, listTypeName string, cases []string) *models.Notification {
	record := &models.Notification{
		ID:             uuid.New().String(),
		ArtefactID:     req.ArtefactID,
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		CreatedAt:      time.Now(),
	}

	if strings.TrimSpace(sub.Email) == "" {
		record.Status = models.NotificationSkipped
		record.ErrorMessage = "No email address for user " + sub.UserID
		return record
	}

	personalisation := map[string]any{
		"location_name":    locationName,
		"list_type":        listTypeName,
		"publication_date": req.ContentDate.Format("2 January 2006"),
	}
	if len(cases) > 0 {
		personalisation["cases"] = strings.Join(cases, "\n")
	}
	if req.PDFPath != "" {
		personalisation["pdf_reference"] = filepath.Base(req.PDFPath)
	}

	emailReq := notify.EmailRequest{
		EmailAddress:    sub.Email,
		TemplateID:      d.cfg.TemplateID,
		Personalisation: personalisation,
		Reference:       req.ArtefactID,
	}

	notifyID, err := d.sendWithRetry(ctx, emailReq)
	if err != nil {
		record.Status = models.NotificationFailed
		record.ErrorMessage = err.Error()
		return record
	}
	record.Status = models.NotificationSent
	record.GovNotifyID = &notifyID
	return record
}

// sendWithRetry retries a failed send cfg.MaxRetries times with
// exponentially growing delay before giving up; the last error wins.
func (d *Dispatcher) sendWithRetry(ctx context.Context, req notify.EmailRequest) (string, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.cfg.RetryBaseDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0

	var notifyID string
	operation := func() error {
		id, err := d.sender.SendEmail(ctx, req)
		if err != nil {
			return err
		}
		notifyID = id
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, d.cfg.MaxRetries), ctx))
	if err != nil {
		return "", err
	}
	return notifyID, nil
}
