package heapdb

import (
	"context"
	"fmt"

	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/execution/executors"
	"github.com/sasha-s/go-deadlock"
)

type txnRequest struct {
	reqId    uint64
	ctx      context.Context
	fn       TxnFunc
	callerCh chan error
	aborts   int
}

type reqResult struct {
	req *txnRequest
	err error
}

/**
 * RequestManager runs submitted transactions on at most maxExecutingReqNum
 * goroutines. A transaction aborted by deadlock detection is put back at the
 * head of the queue and runs again in a new transaction, up to the retry
 * limit of its HeapDB. Results reach the caller on the channel returned by
 * AppendRequest.
 */
type RequestManager struct {
	hdb                *HeapDB
	nextReqId          uint64
	execQue            []*txnRequest
	queMutex           deadlock.Mutex
	curExecutingReqNum int
	maxExecutingReqNum int
	// carries results of finished requests, nil only wakes Run up
	inCh              chan *reqResult
	isExecutionActive bool
	finishedCh        chan struct{}
}

func NewRequestManager(hdb *HeapDB, maxExecutingReqNum int) *RequestManager {
	common.SH_Assert(maxExecutingReqNum > 0, "at least one request must be able to run")
	return &RequestManager{
		hdb:                hdb,
		execQue:            make([]*txnRequest, 0),
		maxExecutingReqNum: maxExecutingReqNum,
		inCh:               make(chan *reqResult, maxExecutingReqNum+1),
		isExecutionActive:  true,
		finishedCh:         make(chan struct{}),
	}
}

// AppendRequest queues fn. The returned channel receives exactly one value,
// the outcome of its last run.
func (reqManager *RequestManager) AppendRequest(ctx context.Context, fn TxnFunc) <-chan error {
	retCh := make(chan error, 1)

	reqManager.queMutex.Lock()
	if !reqManager.isExecutionActive {
		reqManager.queMutex.Unlock()
		retCh <- errors.ErrManagerStopped
		return retCh
	}
	qr := &txnRequest{reqId: reqManager.nextReqId, ctx: ctx, fn: fn, callerCh: retCh}
	reqManager.nextReqId++
	reqManager.execQue = append(reqManager.execQue, qr)
	reqManager.queMutex.Unlock()

	// wake up execution thread. a full channel means Run is going to look at the queue anyway
	select {
	case reqManager.inCh <- nil:
	default:
	}
	return retCh
}

// Execute queues fn and waits for its outcome
func (reqManager *RequestManager) Execute(ctx context.Context, fn TxnFunc) error {
	return <-reqManager.AppendRequest(ctx, fn)
}

func (reqManager *RequestManager) StartTh() {
	go reqManager.Run()
}

// StopTh refuses new requests, waits until every queued one has finished and
// stops the execution thread
func (reqManager *RequestManager) StopTh() {
	reqManager.queMutex.Lock()
	reqManager.isExecutionActive = false
	reqManager.queMutex.Unlock()
	select {
	case reqManager.inCh <- nil:
	default:
	}
	<-reqManager.finishedCh
}

// caller must hold queMutex
func (reqManager *RequestManager) retrieveRequest() *txnRequest {
	retVal := reqManager.execQue[0]
	reqManager.execQue = reqManager.execQue[1:]
	return retVal
}

// caller must hold queMutex
func (reqManager *RequestManager) executeQueuedTxns() {
	for len(reqManager.execQue) > 0 && reqManager.curExecutingReqNum < reqManager.maxExecutingReqNum {
		qr := reqManager.retrieveRequest()
		reqManager.curExecutingReqNum++
		go func(qr *txnRequest) {
			err := reqManager.hdb.runTxnOnce(qr.ctx, func(ec *executors.ExecutorContext) error {
				ec.GetTransaction().SetDebugInfo(fmt.Sprintf("request %d run %d", qr.reqId, qr.aborts))
				return qr.fn(ec)
			})
			reqManager.inCh <- &reqResult{qr, err}
		}(qr)
	}
}

// caller must hold queMutex
func (reqManager *RequestManager) handleResult(result *reqResult) {
	reqManager.curExecutingReqNum--
	qr := result.req
	if errors.IsTransactionAborted(result.err) && qr.aborts < reqManager.hdb.maxRetries && qr.ctx.Err() == nil {
		// insert aborted request to head of que
		qr.aborts++
		reqManager.execQue = append([]*txnRequest{qr}, reqManager.execQue...)
		common.ShPrintf(common.DEBUG_INFO, "request %d requeued after %d deadlock aborts\n", qr.reqId, qr.aborts)
		return
	}
	qr.callerCh <- result.err
}

func (reqManager *RequestManager) Run() {
	for {
		recvVal := <-reqManager.inCh

		reqManager.queMutex.Lock()
		if recvVal != nil {
			reqManager.handleResult(recvVal)
		}
		reqManager.executeQueuedTxns()

		finished := !reqManager.isExecutionActive && len(reqManager.execQue) == 0 && reqManager.curExecutingReqNum == 0
		reqManager.queMutex.Unlock()
		if finished {
			close(reqManager.finishedCh)
			return
		}
	}
}
