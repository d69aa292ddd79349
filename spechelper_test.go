package subjectkit_test

import (
	"context"
	"sync"
)

// example domain used across the builder specs

type Storage interface {
	Save(ctx context.Context, value string) error
	Load(ctx context.Context, id string) (string, error)
}

type Notifier interface {
	Notify(message string)
}

type StorageDouble struct {
	mutex sync.Mutex

	SaveStub func(ctx context.Context, value string) error
	LoadStub func(ctx context.Context, id string) (string, error)

	SavedValues []string
}

func (d *StorageDouble) Save(ctx context.Context, value string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.SaveStub != nil {
		return d.SaveStub(ctx, value)
	}
	d.SavedValues = append(d.SavedValues, value)
	return nil
}

func (d *StorageDouble) Load(ctx context.Context, id string) (string, error) {
	if d.LoadStub != nil {
		return d.LoadStub(ctx, id)
	}
	return "", nil
}

type NotifierDouble struct {
	Messages []string
}

func (d *NotifierDouble) Notify(message string) {
	d.Messages = append(d.Messages, message)
}

type ExporterConfig struct {
	Host    string
	Port    int
	Verbose bool
}

type Exporter struct {
	Storage  Storage
	Notifier Notifier
	Config   ExporterConfig
	Label    string
}

func NewExporter(storage Storage, notifier Notifier, config ExporterConfig, label string) *Exporter {
	return &Exporter{Storage: storage, Notifier: notifier, Config: config, Label: label}
}

func NewDefaultExporter(storage Storage) *Exporter {
	return &Exporter{Storage: storage}
}

func (e *Exporter) Export(ctx context.Context, value string) error {
	if err := e.Storage.Save(ctx, value); err != nil {
		return err
	}
	if e.Notifier != nil {
		e.Notifier.Notify(value)
	}
	return nil
}
