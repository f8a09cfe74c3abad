package task

// prepare 准备阶段，每步执行一次
// 功能：推进时钟并定期输出心跳日志
func (ctx *Context) prepare() {
	ctx.clock.Advance()
	if ctx.clock.InternalStep%ctx.opts.HeartbeatInterval == 0 {
		log.Infof("STEP: %d (%s), %d agents", ctx.clock.InternalStep, ctx.clock, len(ctx.agents))
	}
}

// update 更新阶段，每步执行一次
// 功能：按episode内时间回放背景车辆
func (ctx *Context) update() {
	ctx.agents = ctx.replay.At(ctx.clock.Elapsed())
	log.Debugf("step %d: %d agents", ctx.clock.InternalStep, len(ctx.agents))
}

// notifyStepReady 通知syncer准备阶段完成
func (ctx *Context) notifyStepReady() {
	if ctx.sidecar != nil {
		ctx.sidecar.NotifyStepReady()
	}
}

// step 与syncer同步一步，返回是否需要关闭
func (ctx *Context) step(final bool) bool {
	if ctx.sidecar == nil {
		return final
	}
	return ctx.sidecar.Step(final)
}

// runEpisode 运行一个episode直到结束步
// 参数：last-是否为最后一个episode
// 返回：是否收到关闭指令
func (ctx *Context) runEpisode(last bool) bool {
	ctx.update()
	for {
		ctx.prepare()
		log.Debugf("step %d: prepare complete and call NotifyStepReady", ctx.clock.InternalStep)
		ctx.notifyStepReady()
		ctx.update()
		isEnd := ctx.clock.IsLastStep()
		if ctx.step(last && isEnd) || ctx.closed.Load() {
			return true
		}
		if isEnd {
			return false
		}
	}
}

// Run 运行
// 功能：依次运行各个episode，episode数为0时一直运行直到收到关闭指令
// 返回：场景加载失败时返回错误
func (ctx *Context) Run() error {
	defer ctx.Close()
	// init syncer
	ctx.step(false)
	episodes := ctx.runtimeConfig.C.Episodes
	for episode := 0; episodes == 0 || episode < episodes; episode++ {
		if _, err := ctx.ResetEpisode(episode); err != nil {
			return err
		}
		closed := ctx.runEpisode(episodes > 0 && episode+1 == episodes)
		ctx.mapManager.Unload()
		if closed {
			break
		}
	}
	log.Infof("engine complete")
	return nil
}
