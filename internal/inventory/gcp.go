package inventory

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	compute "cloud.google.com/go/compute/apiv1"
	"cloud.google.com/go/compute/apiv1/computepb"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/vigilops/costwatch/internal/domain/billing"
	"github.com/vigilops/costwatch/internal/pkg/errors"
	"github.com/vigilops/costwatch/internal/pkg/logger"
)

// GCPConfig identifies the project scope to inventory
type GCPConfig struct {
	ProjectID string
	Zone      string
	Region    string
	// Instances lists the instance names to monitor. An instance
	// missing from the project is reported and skipped.
	Instances []string
	// CredentialsFile optionally points at a service account key.
	// Empty means application default credentials.
	CredentialsFile string
}

// GCPSource reads instances, static addresses, and disks through the
// Compute Engine API.
type GCPSource struct {
	cfg       GCPConfig
	instances *compute.InstancesClient
	addresses *compute.AddressesClient
	disks     *compute.DisksClient
	logger    *logger.Logger
}

// NewGCPSource creates an inventory source backed by the Compute
// Engine REST API.
func NewGCPSource(ctx context.Context, cfg GCPConfig, log *logger.Logger) (*GCPSource, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	instances, err := compute.NewInstancesRESTClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create instances client: %w", err)
	}
	addresses, err := compute.NewAddressesRESTClient(ctx, opts...)
	if err != nil {
		instances.Close()
		return nil, fmt.Errorf("failed to create addresses client: %w", err)
	}
	disks, err := compute.NewDisksRESTClient(ctx, opts...)
	if err != nil {
		instances.Close()
		addresses.Close()
		return nil, fmt.Errorf("failed to create disks client: %w", err)
	}

	return &GCPSource{
		cfg:       cfg,
		instances: instances,
		addresses: addresses,
		disks:     disks,
		logger:    log,
	}, nil
}

// Close releases the underlying API clients
func (s *GCPSource) Close() error {
	s.instances.Close()
	s.addresses.Close()
	return s.disks.Close()
}

// Fetch lists the monitored instances, the region's static addresses,
// and the zone's disks. Individual failures are skipped and reported;
// Fetch itself only fails on invalid configuration.
func (s *GCPSource) Fetch(ctx context.Context) (*Snapshot, error) {
	if s.cfg.ProjectID == "" {
		return nil, errors.InvalidConfiguration("project id is required")
	}

	snap := &Snapshot{}
	s.fetchInstances(ctx, snap)
	s.fetchAddresses(ctx, snap)
	s.fetchDisks(ctx, snap)
	return snap, nil
}

func (s *GCPSource) fetchInstances(ctx context.Context, snap *Snapshot) {
	for _, name := range s.cfg.Instances {
		inst, err := s.instances.Get(ctx, &computepb.GetInstanceRequest{
			Project:  s.cfg.ProjectID,
			Zone:     s.cfg.Zone,
			Instance: name,
		})
		if err != nil {
			s.skip(snap, name, classify(name, err))
			continue
		}

		snap.Records = append(snap.Records, billing.ResourceRecord{
			Kind:        billing.KindComputeInstance,
			Name:        inst.GetName(),
			Status:      inst.GetStatus(),
			MachineType: lastSegment(inst.GetMachineType()),
		})
	}
}

func (s *GCPSource) fetchAddresses(ctx context.Context, snap *Snapshot) {
	it := s.addresses.List(ctx, &computepb.ListAddressesRequest{
		Project: s.cfg.ProjectID,
		Region:  s.cfg.Region,
	})
	for {
		addr, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			s.skip(snap, "addresses/"+s.cfg.Region, errors.Unreachable("address list", err))
			break
		}

		snap.Records = append(snap.Records, billing.ResourceRecord{
			Kind:   billing.KindStaticIP,
			Name:   addr.GetName(),
			Status: addr.GetStatus(),
		})
	}
}

func (s *GCPSource) fetchDisks(ctx context.Context, snap *Snapshot) {
	it := s.disks.List(ctx, &computepb.ListDisksRequest{
		Project: s.cfg.ProjectID,
		Zone:    s.cfg.Zone,
	})
	for {
		disk, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			s.skip(snap, "disks/"+s.cfg.Zone, errors.Unreachable("disk list", err))
			break
		}

		snap.Records = append(snap.Records, billing.ResourceRecord{
			Kind:     billing.KindDisk,
			Name:     disk.GetName(),
			Status:   disk.GetStatus(),
			SizeGB:   disk.GetSizeGb(),
			DiskType: diskType(disk.GetType()),
		})
	}
}

func (s *GCPSource) skip(snap *Snapshot, name string, err error) {
	s.logger.WithFields(map[string]interface{}{
		"resource": name,
	}).ErrorWithErr(err, "Skipping resource")
	snap.Skipped = append(snap.Skipped, SkippedResource{Name: name, Reason: err.Error()})
}

// classify maps an API error for a named instance to the taxonomy:
// a 404 is NotFound, anything else Unreachable.
func classify(name string, err error) error {
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) && apiErr.Code == 404 {
		return errors.NotFound(fmt.Sprintf("instance %s", name))
	}
	return errors.Unreachable(fmt.Sprintf("instance %s", name), err)
}

// lastSegment extracts the short name from a resource URL, e.g.
// ".../machineTypes/e2-micro" -> "e2-micro".
func lastSegment(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

// diskType maps the provider's disk type URL to the pricing flavor
func diskType(url string) billing.DiskType {
	if strings.Contains(lastSegment(url), "ssd") {
		return billing.DiskSSD
	}
	return billing.DiskStandard
}
