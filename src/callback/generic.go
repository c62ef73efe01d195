package callback

import (
	"github.com/b2slc/slowcontrol/src/nsm"
	"github.com/b2slc/slowcontrol/src/vars"
	"github.com/sirupsen/logrus"
)

// VREPLY status codes, in par0.
const (
	VReplyFailed  int32 = 0
	VReplySuccess int32 = 1
)

// LOG priorities, in par0.
const (
	LogDebug int32 = iota
	LogInfo
	LogNotice
	LogWarning
	LogError
	LogFatal
)

// PerformGeneric handles the requests every node understands. It returns
// false for any other request.
func (c *Callback) PerformGeneric(msg nsm.Message) bool {
	switch msg.Command() {
	case nsm.VGet:
		c.vget(msg)
	case nsm.VSet:
		c.vset(msg)
	case nsm.VListGet:
		c.vlistget(msg)
	case nsm.StateCheck:
		c.ReplyOK(msg)
	case nsm.OK:
		c.peerReply(msg, nsm.StateFromLabel(msg.Text()))
	case nsm.Error:
		c.logger.WithFields(logrus.Fields{
			"from":  c.sender(msg),
			"error": msg.Text(),
		}).Warn("Peer replied ERROR")
		c.peerReply(msg, nsm.ErrorES)
	case nsm.Fatal:
		c.logger.WithFields(logrus.Fields{
			"from":  c.sender(msg),
			"error": msg.Text(),
		}).Error("Peer reported FATAL")
		c.peerReply(msg, nsm.FatalES)
	case nsm.VReply:
		c.logger.WithFields(logrus.Fields{
			"from":   c.sender(msg),
			"status": msg.Param(0),
		}).Debug("VREPLY")
	case nsm.Log:
		c.log(msg)
	default:
		return false
	}
	return true
}

func (c *Callback) vget(msg nsm.Message) {
	name := msg.Text()
	v, err := c.vars.Get(name)
	if err != nil {
		c.logger.WithError(err).WithField("var", name).Debug("VGET refused")
		c.Reply(msg, nsm.NewCommandMessage(nsm.VReply, VReplyFailed).WithText(name+": "+err.Error()))
		return
	}
	c.replyValue(msg, v)
}

func (c *Callback) vset(msg nsm.Message) {
	v, err := vars.Decode(msg.Data())
	if err != nil {
		c.logger.WithError(err).Warn("Malformed VSET payload")
		c.Reply(msg, nsm.NewCommandMessage(nsm.VReply, VReplyFailed).WithText(err.Error()))
		return
	}
	if err := c.vars.Set(v); err != nil {
		c.logger.WithError(err).WithField("var", v.Name).Debug("VSET refused")
		c.Reply(msg, nsm.NewCommandMessage(nsm.VReply, VReplyFailed).WithText(v.Name+": "+err.Error()))
		return
	}
	c.events.Emit(EventVar, v)

	cur, err := c.vars.Get(v.Name)
	if err != nil {
		cur = v
	}
	c.replyValue(msg, cur)
}

func (c *Callback) vlistget(msg nsm.Message) {
	list := c.vars.List()
	b, err := vars.EncodeList(list)
	if err != nil {
		c.Reply(msg, nsm.NewCommandMessage(nsm.VReply, VReplyFailed).WithText(err.Error()))
		return
	}
	c.Reply(msg, nsm.NewCommandMessage(nsm.VReply, VReplySuccess, int32(len(list))).WithData(b))
}

func (c *Callback) replyValue(msg nsm.Message, v vars.Value) {
	b, err := vars.Encode(v)
	if err != nil {
		c.Reply(msg, nsm.NewCommandMessage(nsm.VReply, VReplyFailed).WithText(err.Error()))
		return
	}
	c.Reply(msg, nsm.NewCommandMessage(nsm.VReply, VReplySuccess).WithData(b))
}

func (c *Callback) peerReply(msg nsm.Message, s nsm.State) {
	if c.com == nil {
		return
	}
	name := c.com.NodeName(msg.Src())
	if name == "" {
		return
	}
	if s != nsm.UnknownState {
		c.com.SetPeerState(name, s)
		c.events.Emit(EventPeerState, name, s)
	}
	c.logger.WithFields(logrus.Fields{
		"from":  name,
		"state": s,
	}).Debug("Peer state")
}

func (c *Callback) log(msg nsm.Message) {
	entry := c.logger.WithField("from", c.sender(msg))
	text := msg.Text()
	switch msg.Param(0) {
	case LogDebug:
		entry.Debug(text)
	case LogInfo, LogNotice:
		entry.Info(text)
	case LogWarning:
		entry.Warn(text)
	default:
		entry.Error(text)
	}
}
