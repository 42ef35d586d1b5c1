package printer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/gousb"
)

// virtualPortPrefix is the textual prefix used by virtual USB port naming
// conventions (e.g. "USB001:"). Strategy 3 strips it to recover the bare
// numeric device name some drivers register instead.
const virtualPortPrefix = "USB"

// usbStrategy is one discovery approach for a USB printer. Strategies run in
// priority order; the first transport that also survives ESC/POS handle
// validation wins.
type usbStrategy interface {
	name() string
	attempt(path string) (Transport, error)
}

func defaultUSBStrategies() []usbStrategy {
	return []usbStrategy{
		configuredPathStrategy{},
		aliasVariantStrategy{},
		numericVariantStrategy{},
		enumerationStrategy{},
	}
}

// configuredPathStrategy opens the device path exactly as configured.
type configuredPathStrategy struct{}

func (configuredPathStrategy) name() string { return "configured-path" }

func (configuredPathStrategy) attempt(path string) (Transport, error) {
	if path == "" {
		return nil, errors.New("no device path configured")
	}
	return openDevicePath(path)
}

// aliasVariantStrategy tries known alias spellings of the configured path:
// the same name with the trailing separator added or stripped, since virtual
// port drivers are inconsistent about it.
type aliasVariantStrategy struct{}

func (aliasVariantStrategy) name() string { return "alias-variant" }

func (aliasVariantStrategy) attempt(path string) (Transport, error) {
	variants := aliasVariants(path)
	if len(variants) == 0 {
		return nil, errors.New("no alias variants for empty path")
	}

	var reasons []string
	for _, v := range variants {
		t, err := openDevicePath(v)
		if err == nil {
			return t, nil
		}
		reasons = append(reasons, err.Error())
	}
	return nil, errors.New(strings.Join(reasons, "; "))
}

func aliasVariants(path string) []string {
	if path == "" {
		return nil
	}
	if strings.HasSuffix(path, ":") {
		return []string{strings.TrimSuffix(path, ":")}
	}
	return []string{path + ":"}
}

// numericVariantStrategy strips the virtual-port prefix so a path like
// "USB001" is retried as "001".
type numericVariantStrategy struct{}

func (numericVariantStrategy) name() string { return "numeric-variant" }

func (numericVariantStrategy) attempt(path string) (Transport, error) {
	numeric := numericVariant(path)
	if numeric == "" {
		return nil, fmt.Errorf("path %q has no %s prefix to strip", path, virtualPortPrefix)
	}
	return openDevicePath(numeric)
}

func numericVariant(path string) string {
	trimmed := strings.TrimSuffix(path, ":")
	base := trimmed
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		base = trimmed[i+1:]
	}
	upper := strings.ToUpper(base)
	if !strings.HasPrefix(upper, virtualPortPrefix) {
		return ""
	}
	numeric := base[len(virtualPortPrefix):]
	if numeric == "" {
		return ""
	}
	if base == trimmed {
		return numeric
	}
	return trimmed[:len(trimmed)-len(base)] + numeric
}

// enumerationStrategy ignores the configured path and scans the bus for the
// first printer-class device, trying several handle-construction approaches
// against it.
type enumerationStrategy struct{}

func (enumerationStrategy) name() string { return "usb-enumeration" }

func (enumerationStrategy) attempt(string) (Transport, error) {
	ctx := gousb.NewContext()

	t, err := openFirstPrinter(ctx)
	if err != nil {
		_ = ctx.Close()
		return nil, err
	}
	return t, nil
}

func isPrinterClass(desc *gousb.DeviceDesc) bool {
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

func openFirstPrinter(ctx *gousb.Context) (Transport, error) {
	devices, err := ctx.OpenDevices(isPrinterClass)
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, errors.New("no printer-class device attached")
	}

	// Keep the first match, release the rest.
	dev := devices[0]
	for _, extra := range devices[1:] {
		_ = extra.Close()
	}

	var reasons []string

	// Direct construction on the already-open handle.
	if t, err := claimOutEndpoint(ctx, dev); err == nil {
		return t, nil
	} else {
		reasons = append(reasons, "direct: "+err.Error())
	}

	// Detach a kernel driver that may hold the interface, then reopen.
	if err := dev.SetAutoDetach(true); err != nil {
		reasons = append(reasons, "auto-detach: "+err.Error())
	} else if t, err := claimOutEndpoint(ctx, dev); err == nil {
		return t, nil
	} else {
		reasons = append(reasons, "auto-detach: "+err.Error())
	}

	// Reconstruct the handle from vendor/product identifiers.
	vendor, product := dev.Desc.Vendor, dev.Desc.Product
	_ = dev.Close()
	reopened, err := ctx.OpenDeviceWithVIDPID(vendor, product)
	if err != nil || reopened == nil {
		reasons = append(reasons, fmt.Sprintf("vid/pid %s:%s: reopen failed", vendor, product))
		return nil, errors.New(strings.Join(reasons, "; "))
	}
	if t, err := claimOutEndpoint(ctx, reopened); err == nil {
		return t, nil
	} else {
		_ = reopened.Close()
		reasons = append(reasons, fmt.Sprintf("vid/pid %s:%s: %s", vendor, product, err.Error()))
	}

	return nil, errors.New(strings.Join(reasons, "; "))
}

func claimOutEndpoint(ctx *gousb.Context, dev *gousb.Device) (Transport, error) {
	intf, done, err := dev.DefaultInterface()
	if err != nil {
		return nil, fmt.Errorf("claim interface: %w", err)
	}

	for _, ep := range intf.Setting.Endpoints {
		if ep.Direction != gousb.EndpointDirectionOut {
			continue
		}
		out, err := intf.OutEndpoint(ep.Number)
		if err != nil {
			continue
		}
		return &usbTransport{ctx: ctx, dev: dev, done: done, ep: out}, nil
	}

	done()
	return nil, errors.New("no OUT endpoint on printer interface")
}

// usbTransport owns the whole gousb handle chain for one connection.
type usbTransport struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	done func()
	ep   *gousb.OutEndpoint
}

func (t *usbTransport) Write(p []byte) (int, error) {
	return t.ep.Write(p)
}

func (t *usbTransport) Close() error {
	t.done()
	err := t.dev.Close()
	if cerr := t.ctx.Close(); err == nil {
		err = cerr
	}
	return err
}
