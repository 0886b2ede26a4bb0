package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// firestoreReservation is the stored document shape.
type firestoreReservation struct {
	Name      string    `firestore:"name"`
	Time      string    `firestore:"time"`
	CreatedAt time.Time `firestore:"created_at"`
}

// firestoreReservationRepo is the Firestore implementation of ReservationRepo.
// Firestore offers no unique secondary index, so the document ID is derived
// from the slot label and DocumentRef.Create, which fails when the document
// exists, provides the uniqueness guarantee.
type firestoreReservationRepo struct {
	col *firestore.CollectionRef
}

// NewFirestoreReservationRepo stores reservations in the named collection.
func NewFirestoreReservationRepo(client *firestore.Client, collection string) ReservationRepo {
	return &firestoreReservationRepo{col: client.Collection(collection)}
}

var slotIDReplacer = strings.NewReplacer(":", "", " ", "")

// slotDocID maps "08:00 - 08:15" to "0800-0815".
func slotDocID(label string) string {
	return slotIDReplacer.Replace(label)
}

func (r *firestoreReservationRepo) List(ctx context.Context) ([]domain.Reservation, error) {
	snaps, err := r.col.OrderBy("time", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("repo.firestoreReservationRepo.List: %w", unavailable(err))
	}

	out := make([]domain.Reservation, 0, len(snaps))
	for _, snap := range snaps {
		res, err := firestoreToDomain(snap)
		if err != nil {
			return nil, fmt.Errorf("repo.firestoreReservationRepo.List: %w", err)
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *firestoreReservationRepo) FindByTime(ctx context.Context, label string) (domain.Reservation, error) {
	snap, err := r.col.Doc(slotDocID(label)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.Reservation{}, fmt.Errorf("repo.firestoreReservationRepo.FindByTime: %w", domain.ErrNotFound)
		}
		return domain.Reservation{}, fmt.Errorf("repo.firestoreReservationRepo.FindByTime: %w", unavailable(err))
	}
	res, err := firestoreToDomain(snap)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.firestoreReservationRepo.FindByTime: %w", err)
	}
	return res, nil
}

func (r *firestoreReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	ref := r.col.Doc(slotDocID(res.Time))
	doc := firestoreReservation{Name: res.Name, Time: res.Time, CreatedAt: res.CreatedAt.UTC()}

	if _, err := ref.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domain.Reservation{}, fmt.Errorf("repo.firestoreReservationRepo.Create: %w", domain.ErrSlotTaken)
		}
		return domain.Reservation{}, fmt.Errorf("repo.firestoreReservationRepo.Create: %w", unavailable(err))
	}
	res.ID = ref.ID
	res.CreatedAt = doc.CreatedAt
	return res, nil
}

// DeleteAll deletes each document present when the call starts, collecting
// the IDs whose deletion failed.
func (r *firestoreReservationRepo) DeleteAll(ctx context.Context) (domain.ClearResult, error) {
	refs, err := r.col.DocumentRefs(ctx).GetAll()
	if err != nil {
		return domain.ClearResult{}, fmt.Errorf("repo.firestoreReservationRepo.DeleteAll: %w", unavailable(err))
	}

	var (
		result domain.ClearResult
		errs   []error
	)
	for _, ref := range refs {
		if _, err := ref.Delete(ctx); err != nil {
			result.Failed = append(result.Failed, ref.ID)
			errs = append(errs, fmt.Errorf("%s: %w", ref.ID, err))
			continue
		}
		result.Removed++
	}
	return clearOutcome("repo.firestoreReservationRepo.DeleteAll", result, errs)
}

func (r *firestoreReservationRepo) Ping(ctx context.Context) error {
	if _, err := r.col.Limit(1).Documents(ctx).GetAll(); err != nil {
		return fmt.Errorf("repo.firestoreReservationRepo.Ping: %w", unavailable(err))
	}
	return nil
}

func firestoreToDomain(snap *firestore.DocumentSnapshot) (domain.Reservation, error) {
	var doc firestoreReservation
	if err := snap.DataTo(&doc); err != nil {
		return domain.Reservation{}, fmt.Errorf("decode %s: %w", snap.Ref.ID, err)
	}
	return domain.Reservation{
		ID:        snap.Ref.ID,
		Name:      doc.Name,
		Time:      doc.Time,
		CreatedAt: doc.CreatedAt,
	}, nil
}
