package service

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"
)

// DefaultMaxConns bounds the simultaneous HTTP connections when no limit is
// configured.
const DefaultMaxConns = 16

// Handler is what the service exposes of a node callback.
type Handler interface {
	Node() *nsm.Node
	Vars() *vars.Registry
	Communicator() *nsm.Communicator
}

// NodeInfo is the body of GET /node.
type NodeInfo struct {
	Name  string `json:"name"`
	State string `json:"state"`
	ID    int    `json:"id"`
}

// VarInfo is one element of GET /vars.
type VarInfo struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// Service serves the status of one node over HTTP.
type Service struct {
	lock sync.Locker

	bindAddress string
	maxConns    int
	handler     Handler
	mux         *http.ServeMux
	listener    net.Listener
	logger      *logrus.Entry
}

// NewService ...
func NewService(bindAddress string, maxConns int, h Handler, logger *logrus.Entry) *Service {
	if maxConns <= 0 {
		maxConns = DefaultMaxConns
	}
	service := Service{
		lock:        &sync.Mutex{},
		bindAddress: bindAddress,
		maxConns:    maxConns,
		handler:     h,
		mux:         http.NewServeMux(),
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

// ShareLock makes the handlers hold l while they read the node. The daemon
// passes the lock its event loop holds around Perform and Timeout.
func (s *Service) ShareLock(l sync.Locker) {
	s.lock = l
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering status API handlers")
	s.mux.HandleFunc("/node", s.makeHandler(s.GetNode))
	s.mux.HandleFunc("/vars", s.makeHandler(s.GetVars))
	s.mux.HandleFunc("/vars/", s.makeHandler(s.GetVar))
	s.mux.HandleFunc("/peers", s.makeHandler(s.GetPeers))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		defer s.lock.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		fn(w, r)
	}
}

// ServeHTTP ...
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Listen opens the listening socket, limited to maxConns simultaneous
// connections.
func (s *Service) Listen() error {
	l, err := net.Listen("tcp", s.bindAddress)
	if err != nil {
		return err
	}
	s.listener = netutil.LimitListener(l, s.maxConns)
	return nil
}

// Addr returns the bound address, once listening.
func (s *Service) Addr() string {
	if s.listener == nil {
		return s.bindAddress
	}
	return s.listener.Addr().String()
}

// Serve serves requests until Close. This is a blocking call.
func (s *Service) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.logger.WithField("bind_address", s.Addr()).Debug("Serving status API")

	err := http.Serve(s.listener, s.mux)
	if err != nil && !isClosed(err) {
		s.logger.Error(err)
		return err
	}
	return nil
}

// Close stops Serve.
func (s *Service) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

// GetNode ...
func (s *Service) GetNode(w http.ResponseWriter, r *http.Request) {
	node := s.handler.Node()
	info := NodeInfo{
		Name:  node.Name(),
		State: node.State().Label(),
		ID:    -1,
	}
	if com := s.handler.Communicator(); com != nil {
		info.ID = int(com.ID())
	}

	writeJSON(w, info)
}

// GetVars ...
func (s *Service) GetVars(w http.ResponseWriter, r *http.Request) {
	list := s.handler.Vars().List()
	res := make([]VarInfo, 0, len(list))
	for _, v := range list {
		res = append(res, varInfo(v))
	}

	writeJSON(w, res)
}

// GetVar ...
func (s *Service) GetVar(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path[len("/vars/"):]

	v, err := s.handler.Vars().Get(name)
	if err == vars.ErrNotFound {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.WithError(err).Errorf("Reading variable %s", name)

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, varInfo(v))
}

// GetPeers ...
func (s *Service) GetPeers(w http.ResponseWriter, r *http.Request) {
	res := map[string]string{}
	if com := s.handler.Communicator(); com != nil {
		for name, state := range com.PeerStates() {
			res[name] = state.Label()
		}
	}

	writeJSON(w, res)
}

func varInfo(v vars.Value) VarInfo {
	return VarInfo{
		Name:  v.Name,
		Type:  v.Type.String(),
		Value: v.Interface(),
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(v)
}
