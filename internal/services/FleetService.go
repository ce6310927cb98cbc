package services

import (
	"fmt"
	"rucd/internal/models"
	"sync"
	"time"

	"github.com/google/uuid"
)

type FleetServiceInterface interface {
	List() []*models.Vehicle
	Get(id uuid.UUID) (*models.Vehicle, bool)
	AddVehicle(v *models.Vehicle)
	UpdateVehicle(v *models.Vehicle) bool
	DeleteVehicle(id uuid.UUID) bool
	AddEntry(vehicleID uuid.UUID, entry models.OdometerEntry) bool
	DeleteEntry(vehicleID, entryID uuid.UUID) bool
	ExtendDistanceExpiry(vehicleID uuid.UUID, newExpiry int) error
	VehicleCount() int
	GetSnapshot() *models.Snapshot
	PutSnapshot(snapshot *models.Snapshot)
	OnChange(fn func())
}

// FleetService holds the ordered vehicle list. It is the single logical
// mutator: all writes come through one of the mutation methods, each of
// which notifies the registered change listeners after committing, so the
// caller-side reactive layer (persist + reschedule) stays outside the
// data structure itself.
type FleetService struct {
	mu        sync.RWMutex
	vehicles  []*models.Vehicle
	listeners []func()
}

func NewFleetService() FleetServiceInterface {
	return &FleetService{}
}

// List returns the fleet in priority order (deep copies).
func (fs *FleetService) List() []*models.Vehicle {
	fs.mu.RLock()
	out := make([]*models.Vehicle, 0, len(fs.vehicles))
	for _, v := range fs.vehicles {
		out = append(out, v.Clone())
	}
	fs.mu.RUnlock()

	models.SortFleet(out, time.Now())
	return out
}

func (fs *FleetService) Get(id uuid.UUID) (*models.Vehicle, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	for _, v := range fs.vehicles {
		if v.ID == id {
			return v.Clone(), true
		}
	}
	return nil, false
}

func (fs *FleetService) AddVehicle(v *models.Vehicle) {
	fs.mu.Lock()
	v.SortEntries()
	fs.vehicles = append(fs.vehicles, v.Clone())
	fs.mu.Unlock()

	fs.notifyChange()
}

func (fs *FleetService) UpdateVehicle(v *models.Vehicle) bool {
	fs.mu.Lock()
	found := false
	for i, existing := range fs.vehicles {
		if existing.ID == v.ID {
			v.SortEntries()
			fs.vehicles[i] = v.Clone()
			found = true
			break
		}
	}
	fs.mu.Unlock()

	if found {
		fs.notifyChange()
	}
	return found
}

func (fs *FleetService) DeleteVehicle(id uuid.UUID) bool {
	fs.mu.Lock()
	found := false
	for i, v := range fs.vehicles {
		if v.ID == id {
			fs.vehicles = append(fs.vehicles[:i], fs.vehicles[i+1:]...)
			found = true
			break
		}
	}
	fs.mu.Unlock()

	if found {
		fs.notifyChange()
	}
	return found
}

func (fs *FleetService) AddEntry(vehicleID uuid.UUID, entry models.OdometerEntry) bool {
	fs.mu.Lock()
	found := false
	for _, v := range fs.vehicles {
		if v.ID == vehicleID {
			v.Entries = append(v.Entries, entry)
			v.SortEntries()
			found = true
			break
		}
	}
	fs.mu.Unlock()

	if found {
		fs.notifyChange()
	}
	return found
}

func (fs *FleetService) DeleteEntry(vehicleID, entryID uuid.UUID) bool {
	fs.mu.Lock()
	found := false
	for _, v := range fs.vehicles {
		if v.ID != vehicleID {
			continue
		}
		for i, e := range v.Entries {
			if e.ID == entryID {
				v.Entries = append(v.Entries[:i], v.Entries[i+1:]...)
				found = true
				break
			}
		}
		break
	}
	fs.mu.Unlock()

	if found {
		fs.notifyChange()
	}
	return found
}

// ExtendDistanceExpiry raises a vehicle's RUC block threshold. The threshold
// is monotone: lowering it is rejected here rather than silently clamped.
func (fs *FleetService) ExtendDistanceExpiry(vehicleID uuid.UUID, newExpiry int) error {
	fs.mu.Lock()
	var err error
	found := false
	for _, v := range fs.vehicles {
		if v.ID != vehicleID {
			continue
		}
		found = true
		if newExpiry <= v.DistanceExpiry {
			err = fmt.Errorf("expiry %d does not extend current block %d", newExpiry, v.DistanceExpiry)
			break
		}
		v.DistanceExpiry = newExpiry
		break
	}
	fs.mu.Unlock()

	if !found {
		return fmt.Errorf("vehicle %s not found", vehicleID)
	}
	if err != nil {
		return err
	}

	fs.notifyChange()
	return nil
}

func (fs *FleetService) VehicleCount() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.vehicles)
}

func (fs *FleetService) GetSnapshot() *models.Snapshot {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	vehicles := make([]*models.Vehicle, 0, len(fs.vehicles))
	for _, v := range fs.vehicles {
		vehicles = append(vehicles, v.Clone())
	}
	return &models.Snapshot{
		Version:  models.SnapshotVersion,
		Vehicles: vehicles,
	}
}

// PutSnapshot replaces the fleet wholesale (restore path). Does not notify
// change listeners: a restore is not a user mutation.
func (fs *FleetService) PutSnapshot(snapshot *models.Snapshot) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.vehicles = make([]*models.Vehicle, 0, len(snapshot.Vehicles))
	for _, v := range snapshot.Vehicles {
		cp := v.Clone()
		cp.SortEntries()
		fs.vehicles = append(fs.vehicles, cp)
	}
}

// OnChange registers a listener invoked after every committed mutation.
// Listeners run on the mutating goroutine, outside the service lock.
func (fs *FleetService) OnChange(fn func()) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.listeners = append(fs.listeners, fn)
}

func (fs *FleetService) notifyChange() {
	fs.mu.RLock()
	listeners := make([]func(), len(fs.listeners))
	copy(listeners, fs.listeners)
	fs.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
