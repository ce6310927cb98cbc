package fleet

import (
	"os"
	"rucd/internal/fleet/interfaces"
	"rucd/internal/models"
	"rucd/internal/providers"
	"rucd/internal/services"
	"time"

	json "github.com/goccy/go-json"
)

// FileManager persists the fleet snapshot. Saves keep the previous good
// primary as a backup before the atomic replace; loads walk primary, then
// backup, then give up to an empty fleet so startup never fails on bad data.
type FileManager struct {
	service    services.FleetServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.FleetServiceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
		metrics:    metrics,
	}
}

func (f *FileManager) SaveToFile(fileName, backupName string) error {
	start := time.Now()
	snapshot := f.service.GetSnapshot()

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	// Keep the previous good copy around before overwriting it.
	f.backupCurrent(fileName, backupName)

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		return err
	}

	f.metrics.ObservePersistenceDuration(time.Since(start))
	return nil
}

// backupCurrent copies the current primary to the backup path. Best-effort:
// a failed backup must not block saving new data.
func (f *FileManager) backupCurrent(fileName, backupName string) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warnf(providers.TypeApp, "Failed to read current snapshot for backup: %s", err)
		}
		return
	}

	tmpBackup := backupName + ".tmp"
	if err := os.WriteFile(tmpBackup, data, 0644); err != nil {
		f.logger.Warnf(providers.TypeApp, "Failed to write backup snapshot: %s", err)
		return
	}
	if err := os.Rename(tmpBackup, backupName); err != nil {
		f.logger.Warnf(providers.TypeApp, "Failed to replace backup snapshot: %s", err)
		os.Remove(tmpBackup)
	}
}

// LoadFromFile restores the fleet from the primary file, falling back to the
// backup, falling back to an empty fleet. Only unexpected I/O errors are
// returned; corrupt data degrades with a warning.
func (f *FileManager) LoadFromFile(fileName, backupName string) error {
	if loaded, err := f.tryLoad(fileName); err != nil {
		return err
	} else if loaded {
		return nil
	}

	f.logger.Warnf(providers.TypeApp, "Primary snapshot unusable, trying backup %s", backupName)
	if loaded, err := f.tryLoad(backupName); err != nil {
		return err
	} else if loaded {
		f.logger.Infof(providers.TypeApp, "Fleet restored from backup snapshot")
		return nil
	}

	f.logger.Warnf(providers.TypeApp, "No usable snapshot found, starting with an empty fleet")
	f.service.PutSnapshot(&models.Snapshot{Version: models.SnapshotVersion})
	return nil
}

// tryLoad returns (true, nil) when the file was decoded and applied,
// (false, nil) when it is missing or corrupt.
func (f *FileManager) tryLoad(fileName string) (bool, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	jsonData, err := f.compressor.Decompress(data)
	if err != nil {
		// Legacy files were written as plain JSON without compression.
		jsonData = data
	}

	// Current format: versioned envelope.
	var snapshot models.Snapshot
	if err := json.Unmarshal(jsonData, &snapshot); err == nil && snapshot.Vehicles != nil {
		f.service.PutSnapshot(&snapshot)
		return true, nil
	}

	// Legacy format: bare vehicle array.
	var vehicles []*models.Vehicle
	if err := json.Unmarshal(jsonData, &vehicles); err == nil && vehicles != nil {
		f.logger.Warnf(providers.TypeApp, "Migrated legacy fleet file %s", fileName)
		f.service.PutSnapshot(&models.Snapshot{Version: models.SnapshotVersion, Vehicles: vehicles})
		return true, nil
	}

	f.logger.Warnf(providers.TypeApp, "Snapshot file %s is corrupt", fileName)
	return false, nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}
