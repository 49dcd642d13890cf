// Package hal binds configured devices to bus handles through registered
// drivers and exposes each instance's attributes on the in-process bus.
//
// Topics:
//
//	hal/state                          retained HALState
//	hal/dev/<id>/info                  retained DeviceInfo while bound
//	hal/dev/<id>/status                retained DeviceStatus
//	hal/dev/<id>/attr/<name>/value     retained AttrValue (poller output)
//	hal/dev/<id>/attr/<name>/read      request, replies AttrReply
//	hal/ctrl/{bind,unbind,list}        request, replies OKReply/ErrorReply/DeviceList
package hal

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"ina260-go/bus"
	"ina260-go/errcode"
	"ina260-go/services/hal/attr"
	"ina260-go/services/hal/platform"
	"ina260-go/services/hal/trace"
	"ina260-go/types"
	"ina260-go/x/timex"

	"github.com/google/uuid"
)

type Options struct {
	Buses platform.BusProvider
	// Trace receives every I2C transaction of every bound device. Optional.
	Trace trace.Logger
	Log   *slog.Logger
	// PollJitter is added to each poll interval. Optional.
	PollJitter time.Duration
	// NewBindID overrides the bind identifier source. Tests only.
	NewBindID func() string
}

type binding struct {
	cfg    DeviceConfig
	driver Driver
	bindID string
	inst   Instance
	attrs  *attr.Set
}

func (b *binding) info() types.DeviceInfo {
	return types.DeviceInfo{
		ID:         b.cfg.ID,
		Type:       b.cfg.Type,
		Driver:     b.driver.Name(),
		BindID:     b.bindID,
		Bus:        b.cfg.Bus,
		Addr:       b.cfg.Addr,
		Attributes: b.attrs.Names(),
		Detail:     b.inst.Detail(),
	}
}

type HAL struct {
	conn *bus.Connection
	opts Options
	log  *slog.Logger

	bindMu sync.Mutex // serialises Bind, Unbind and Reconcile

	mu      sync.RWMutex
	drivers map[string]Driver // device type -> driver
	bound   map[string]*binding
	known   map[string]DeviceConfig

	pollCh chan PollReq
	poller *Poller
	wg     sync.WaitGroup
}

func New(conn *bus.Connection, opts Options) *HAL {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.NewBindID == nil {
		opts.NewBindID = uuid.NewString
	}
	if opts.Buses == nil {
		opts.Buses = platform.Static{}
	}
	pollCh := make(chan PollReq, 16)
	return &HAL{
		conn:    conn,
		opts:    opts,
		log:     opts.Log.With("svc", "hal"),
		drivers: map[string]Driver{},
		bound:   map[string]*binding{},
		known:   map[string]DeviceConfig{},
		pollCh:  pollCh,
		poller:  NewPoller(pollCh),
	}
}

// AddDriver registers d for every device type it claims.
func (h *HAL) AddDriver(d Driver) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, id := range d.IDs() {
		if prev, dup := h.drivers[id]; dup {
			return &errcode.E{C: errcode.InvalidParams, Op: "add_driver",
				Msg: "type " + id + " already claimed by " + prev.Name()}
		}
	}
	for _, id := range d.IDs() {
		h.drivers[id] = d
	}
	return nil
}

// ---- Bind / Unbind ----

// Bind probes cfg and, on success, publishes the instance's info and status.
// The device becomes known even when probing fails, so a later bind request
// can retry it.
func (h *HAL) Bind(ctx context.Context, cfg DeviceConfig) error {
	if cfg.ID == "" {
		return &errcode.E{C: errcode.InvalidParams, Op: "bind", Msg: "missing id"}
	}
	h.bindMu.Lock()
	defer h.bindMu.Unlock()
	h.mu.Lock()
	h.known[cfg.ID] = cfg
	h.mu.Unlock()
	return h.bind(ctx, cfg)
}

func (h *HAL) bind(ctx context.Context, cfg DeviceConfig) error {
	const op = "bind"
	if cfg.ID == "" {
		return &errcode.E{C: errcode.InvalidParams, Op: op, Msg: "missing id"}
	}
	h.mu.RLock()
	_, isBound := h.bound[cfg.ID]
	drv, hasDrv := h.drivers[cfg.Type]
	h.mu.RUnlock()
	if isBound {
		return &errcode.E{C: errcode.AlreadyBound, Op: op, Msg: cfg.ID}
	}
	if !hasDrv {
		return &errcode.E{C: errcode.NoDriver, Op: op, Msg: "type " + cfg.Type}
	}
	raw, ok := h.opts.Buses.ByID(cfg.Bus)
	if !ok {
		return &errcode.E{C: errcode.UnknownBus, Op: op, Msg: cfg.Bus}
	}

	bindID := h.opts.NewBindID()
	log := h.log.With("dev", cfg.ID, "bind_id", bindID)
	attrs := attr.NewSet()
	in := ProbeInput{
		ID:     cfg.ID,
		BindID: bindID,
		Bus:    trace.Wrap(raw, h.opts.Trace, trace.Source{DeviceID: cfg.ID, BindID: bindID, Bus: cfg.Bus}),
		BusID:  cfg.Bus,
		Addr:   cfg.Addr,
		Params: cfg.Params,
		Log:    log,
	}
	inst, err := drv.Probe(ctx, in, attrs)
	if err != nil {
		attrs.Clear()
		werr := errcode.Wrap(op, err)
		h.pubStatus(cfg.ID, types.LinkUnbound, string(errcode.Of(werr)))
		log.Warn("probe failed", "driver", drv.Name(), "err", err)
		return werr
	}

	b := &binding{cfg: cfg, driver: drv, bindID: bindID, inst: inst, attrs: attrs}
	h.mu.Lock()
	h.bound[cfg.ID] = b
	h.mu.Unlock()

	h.conn.Publish(h.conn.NewMessage(TopicInfo(cfg.ID), b.info(), true))
	h.pubStatus(cfg.ID, types.LinkBound, "")
	if cfg.PollEvery > 0 {
		for _, name := range attrs.Names() {
			h.poller.Upsert(cfg.ID, name, cfg.PollEvery, h.opts.PollJitter)
		}
	}
	log.Info("bound", "driver", drv.Name(), "bus", cfg.Bus, "attrs", attrs.Len())
	return nil
}

// Unbind removes the instance's attributes before releasing the driver, so no
// attribute read can reach a removed instance.
func (h *HAL) Unbind(id string) error {
	h.bindMu.Lock()
	defer h.bindMu.Unlock()
	return h.unbind(id)
}

func (h *HAL) unbind(id string) error {
	h.mu.Lock()
	b := h.bound[id]
	delete(h.bound, id)
	h.mu.Unlock()
	if b == nil {
		return &errcode.E{C: errcode.UnknownDevice, Op: "unbind", Msg: id}
	}

	h.poller.StopDevice(id)
	names := b.attrs.Names()
	b.attrs.Clear()
	err := b.inst.Remove()

	// Clear retained state that describes the removed instance.
	for _, name := range names {
		h.conn.Publish(h.conn.NewMessage(TopicAttrValue(id, name), nil, true))
	}
	h.conn.Publish(h.conn.NewMessage(TopicInfo(id), nil, true))
	h.pubStatus(id, types.LinkUnbound, "")
	h.log.Info("unbound", "dev", id, "bind_id", b.bindID)
	if err != nil {
		return errcode.Wrap("unbind", err)
	}
	return nil
}

// Reconcile makes the bound set match cfgs: devices no longer listed are
// unbound, changed devices are rebound, and new devices are bound. Bind
// failures are collected; the remaining devices are still processed.
func (h *HAL) Reconcile(ctx context.Context, cfgs []DeviceConfig) error {
	h.bindMu.Lock()
	defer h.bindMu.Unlock()
	return h.reconcile(ctx, cfgs)
}

// ReconcileBuses installs a new bus table on buses and then reconciles
// against cfgs. Devices on a bus whose path changed or disappeared are
// unbound before buses closes the old handle, and rebound on the new one.
// Errors from every stage are joined.
func (h *HAL) ReconcileBuses(ctx context.Context, buses platform.Reloadable, paths map[string]string, cfgs []DeviceConfig) error {
	h.bindMu.Lock()
	defer h.bindMu.Unlock()

	var errs []error
	if stale := buses.Stale(paths); len(stale) > 0 {
		for _, d := range h.Bound() {
			if !slices.Contains(stale, d.Bus) {
				continue
			}
			if err := h.unbind(d.ID); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if err := buses.SetPaths(paths); err != nil {
		errs = append(errs, errcode.Wrap("set_paths", err))
	}
	if err := h.reconcile(ctx, cfgs); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (h *HAL) reconcile(ctx context.Context, cfgs []DeviceConfig) error {
	want := make(map[string]DeviceConfig, len(cfgs))
	for _, c := range cfgs {
		want[c.ID] = c
	}

	h.mu.Lock()
	h.known = want
	var stale []string
	for id, b := range h.bound {
		if c, ok := want[id]; !ok || !c.Equal(b.cfg) {
			stale = append(stale, id)
		}
	}
	h.mu.Unlock()

	var errs []error
	sort.Strings(stale)
	for _, id := range stale {
		if err := h.unbind(id); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range cfgs {
		h.mu.RLock()
		_, ok := h.bound[c.ID]
		h.mu.RUnlock()
		if ok {
			continue
		}
		if err := h.bind(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	h.log.Info("reconciled", "wanted", len(cfgs), "bound", len(h.Bound()), "errors", len(errs))
	return errors.Join(errs...)
}

func (h *HAL) unbindAll() {
	h.bindMu.Lock()
	defer h.bindMu.Unlock()
	for _, info := range h.Bound() {
		_ = h.unbind(info.ID)
	}
}

// ---- Queries ----

// Show reads one attribute of a bound device.
func (h *HAL) Show(ctx context.Context, id, name string) (string, error) {
	b := h.lookup(id)
	if b == nil {
		return "", &errcode.E{C: errcode.UnknownDevice, Op: "show", Msg: id}
	}
	return b.show(ctx, name)
}

func (h *HAL) lookup(id string) *binding {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bound[id]
}

func (b *binding) show(ctx context.Context, name string) (string, error) {
	v, err := b.attrs.Show(ctx, name)
	if errors.Is(err, attr.ErrNoAttribute) {
		return "", &errcode.E{C: errcode.UnknownAttribute, Op: "show", Msg: b.cfg.ID + "/" + name, Err: err}
	}
	return v, err
}

// Bound returns info for every bound device, sorted by id.
func (h *HAL) Bound() []types.DeviceInfo {
	h.mu.RLock()
	out := make([]types.DeviceInfo, 0, len(h.bound))
	for _, b := range h.bound {
		out = append(out, b.info())
	}
	h.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Configured returns the ids of every known device, bound or not.
func (h *HAL) Configured() []string {
	h.mu.RLock()
	out := make([]string, 0, len(h.known))
	for id := range h.known {
		out = append(out, id)
	}
	h.mu.RUnlock()
	sort.Strings(out)
	return out
}

// ---- Run loop ----

// Run serves attribute reads, control requests and poll output until ctx is
// done, then unbinds everything. Reads run concurrently; each driver
// serialises access to its own device.
func (h *HAL) Run(ctx context.Context) {
	readSub := h.conn.Subscribe(attrReadWildcard())
	ctrlSub := h.conn.Subscribe(ctrlWildcard())
	defer h.conn.Unsubscribe(readSub)
	defer h.conn.Unsubscribe(ctrlSub)

	go h.poller.Run(ctx)
	h.pubHALState("ready", "")
	h.log.Info("running")

	for {
		select {
		case <-ctx.Done():
			h.wg.Wait()
			h.unbindAll()
			h.pubHALState("stopped", "context_cancelled")
			h.log.Info("stopped")
			return
		case m, ok := <-readSub.Channel():
			if !ok {
				return
			}
			h.spawn(func() { h.handleRead(ctx, m) })
		case m, ok := <-ctrlSub.Channel():
			if !ok {
				return
			}
			h.spawn(func() { h.handleControl(ctx, m) })
		case req := <-h.pollCh:
			h.spawn(func() { h.handlePoll(ctx, req) })
		}
	}
}

func (h *HAL) spawn(fn func()) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		fn()
	}()
}

// hal/dev/<id>/attr/<name>/read
func (h *HAL) handleRead(ctx context.Context, m *bus.Message) {
	id, _ := m.Topic.At(2).(string)
	name, _ := m.Topic.At(4).(string)
	if id == "" || name == "" {
		h.conn.Reply(m, types.AttrReply{OK: false, Error: string(errcode.InvalidTopic)}, false)
		return
	}
	v, err := h.Show(ctx, id, name)
	if err != nil {
		h.log.Debug("read failed", "dev", id, "attr", name, "err", err)
		h.conn.Reply(m, types.AttrReply{OK: false, Error: string(errcode.Of(err))}, false)
		return
	}
	h.conn.Reply(m, types.AttrReply{OK: true, Value: v}, false)
}

// hal/ctrl/<verb>
func (h *HAL) handleControl(ctx context.Context, m *bus.Message) {
	verb, _ := m.Topic.At(2).(string)
	var err error
	switch verb {
	case "list":
		h.conn.Reply(m, types.DeviceList{Bound: h.Bound(), Configured: h.Configured()}, false)
		return
	case "bind":
		req, ok := m.Payload.(types.BindRequest)
		if !ok || req.ID == "" {
			err = errcode.InvalidPayload
			break
		}
		h.mu.RLock()
		cfg, known := h.known[req.ID]
		h.mu.RUnlock()
		if !known {
			err = &errcode.E{C: errcode.UnknownDevice, Op: "bind", Msg: req.ID}
			break
		}
		err = h.Bind(ctx, cfg)
	case "unbind":
		req, ok := m.Payload.(types.UnbindRequest)
		if !ok || req.ID == "" {
			err = errcode.InvalidPayload
			break
		}
		err = h.Unbind(req.ID)
	default:
		err = errcode.Unsupported
	}
	if err != nil {
		h.log.Debug("control failed", "verb", verb, "err", err)
		h.conn.Reply(m, types.ErrorReply{OK: false, Error: string(errcode.Of(err))}, false)
		return
	}
	h.conn.Reply(m, types.OKReply{OK: true}, false)
}

// handlePoll publishes a poll result only while the binding that produced
// it is still current. Holding mu across the publish orders it before any
// unbind of that binding, whose clears then overwrite it.
func (h *HAL) handlePoll(ctx context.Context, req PollReq) {
	b := h.lookup(req.Device)
	if b == nil {
		return
	}
	v, err := b.show(ctx, req.Attr)

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.bound[req.Device] != b {
		h.log.Debug("poll result dropped", "dev", req.Device, "attr", req.Attr, "bind_id", b.bindID)
		return
	}
	if err != nil {
		code := errcode.Of(err)
		// The attribute went away between scheduling and reading.
		if code == errcode.UnknownAttribute || code == errcode.Cancelled {
			return
		}
		h.pubStatus(req.Device, types.LinkDegraded, string(code))
		h.log.Warn("poll failed", "dev", req.Device, "attr", req.Attr, "err", err)
		return
	}
	h.conn.Publish(h.conn.NewMessage(TopicAttrValue(req.Device, req.Attr),
		types.AttrValue{Value: v, TSms: timex.NowMs()}, true))
	h.pubStatus(req.Device, types.LinkUp, "")
}

// ---- Publishing ----

func (h *HAL) pubStatus(id string, link types.Link, code string) {
	h.conn.Publish(h.conn.NewMessage(TopicStatus(id),
		types.DeviceStatus{Link: link, TSms: timex.NowMs(), Error: code}, true))
}

func (h *HAL) pubHALState(level, status string) {
	h.conn.Publish(h.conn.NewMessage(topicHALState(),
		types.HALState{Level: level, Status: status, TSms: timex.NowMs()}, true))
}
